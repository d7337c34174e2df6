package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type Money int64

func (m Money) ToDollars() string {
	dollars := float64(m) / 100.0
	return fmt.Sprintf("$%.2f", dollars)
}

func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) GreaterThan(other Money) bool {
	return m > other
}

type OptimizeRequest struct {
	Truck  TruckInput   `json:"truck"`
	Orders []OrderInput `json:"orders"`
}

type ValidateRequest struct {
	Orders []OrderInput `json:"orders"`
}

type TruckInput struct {
	ID            string `json:"id"`
	MaxWeightLbs  int    `json:"max_weight_lbs"`
	MaxVolumeCuft int    `json:"max_volume_cuft"`
}

type OrderInput struct {
	ID           string `json:"id"`
	PayoutCents  int64  `json:"payout_cents"`
	WeightLbs    int    `json:"weight_lbs"`
	VolumeCuft   int    `json:"volume_cuft"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	PickupDate   string `json:"pickup_date"`
	DeliveryDate string `json:"delivery_date"`
	IsHazmat     bool   `json:"is_hazmat"`
}

type Truck struct {
	ID            string
	MaxWeightLbs  int
	MaxVolumeCuft int
}

type Order struct {
	ID           string
	Payout       Money
	WeightLbs    int
	VolumeCuft   int
	Origin       string
	Destination  string
	PickupDate   time.Time
	DeliveryDate time.Time
	IsHazmat     bool
}

func (o Order) FitsIn(availableWeight, availableVolume int) bool {
	return o.WeightLbs <= availableWeight && o.VolumeCuft <= availableVolume
}

func (o Order) SameRoute(other Order) bool {
	return o.Origin == other.Origin && o.Destination == other.Destination
}

type OptimizeResponse struct {
	TruckID                  string   `json:"truck_id"`
	SelectedOrderIDs         []string `json:"selected_order_ids"`
	TotalPayoutCents         int64    `json:"total_payout_cents"`
	TotalWeightLbs           int      `json:"total_weight_lbs"`
	TotalVolumeCuft          int      `json:"total_volume_cuft"`
	UtilizationWeightPercent float64  `json:"utilization_weight_percent"`
	UtilizationVolumePercent float64  `json:"utilization_volume_percent"`
}

type ValidateResponse struct {
	Compatible bool      `json:"compatible"`
	Code       ErrorCode `json:"code,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Validate checks the request shape. maxOrders is the candidate cap the
// optimizer depends on; exceeding it wraps ErrPayloadTooLarge, every other
// failure wraps ErrInvalidInput.
func (r *OptimizeRequest) Validate(maxOrders int) error {
	if r.Truck.ID == "" {
		return invalid("truck id is required")
	}
	if r.Truck.MaxWeightLbs <= 0 {
		return invalid("truck max_weight_lbs must be positive")
	}
	if r.Truck.MaxWeightLbs > 1000000 {
		return invalid("truck max_weight_lbs exceeds maximum allowed value")
	}
	if r.Truck.MaxVolumeCuft <= 0 {
		return invalid("truck max_volume_cuft must be positive")
	}
	if r.Truck.MaxVolumeCuft > 100000 {
		return invalid("truck max_volume_cuft exceeds maximum allowed value")
	}
	if len(r.Orders) > maxOrders {
		return fmt.Errorf("%w: maximum %d orders allowed (got %d)", ErrPayloadTooLarge, maxOrders, len(r.Orders))
	}

	return validateOrders(r.Orders)
}

func (r *ValidateRequest) Validate(maxOrders int) error {
	if len(r.Orders) > maxOrders {
		return fmt.Errorf("%w: maximum %d orders allowed (got %d)", ErrPayloadTooLarge, maxOrders, len(r.Orders))
	}
	return validateOrders(r.Orders)
}

func validateOrders(orders []OrderInput) error {
	seenIDs := make(map[string]bool, len(orders))
	for i, order := range orders {
		if seenIDs[order.ID] {
			return invalid("duplicate order id: %s", order.ID)
		}
		seenIDs[order.ID] = true

		if err := order.Validate(); err != nil {
			return fmt.Errorf("order[%d]: %w", i, err)
		}
	}
	return nil
}

func (o *OrderInput) Validate() error {
	if o.ID == "" {
		return invalid("order id is required")
	}
	if len(o.ID) > 100 {
		return invalid("order id must be less than 100 characters")
	}
	if o.PayoutCents < 0 {
		return invalid("payout_cents must not be negative")
	}
	if o.PayoutCents > 100000000000 {
		return invalid("payout_cents exceeds maximum allowed value")
	}
	if o.WeightLbs <= 0 {
		return invalid("weight_lbs must be positive")
	}
	if o.WeightLbs > 1000000 {
		return invalid("weight_lbs exceeds maximum allowed value")
	}
	if o.VolumeCuft <= 0 {
		return invalid("volume_cuft must be positive")
	}
	if o.VolumeCuft > 100000 {
		return invalid("volume_cuft exceeds maximum allowed value")
	}
	if o.Origin == "" || o.Destination == "" {
		return invalid("origin and destination are required")
	}
	if len(o.Origin) > 200 || len(o.Destination) > 200 {
		return invalid("origin and destination must be less than 200 characters")
	}

	pickup, err := time.Parse(DateLayout, o.PickupDate)
	if err != nil {
		return invalid("invalid pickup_date format (expected YYYY-MM-DD)")
	}
	delivery, err := time.Parse(DateLayout, o.DeliveryDate)
	if err != nil {
		return invalid("invalid delivery_date format (expected YYYY-MM-DD)")
	}
	if delivery.Before(pickup) {
		return invalid("delivery_date cannot be before pickup_date")
	}

	return nil
}

// ToDomain assumes Validate has passed.
func (r *OptimizeRequest) ToDomain() (Truck, []Order) {
	truck := Truck{
		ID:            r.Truck.ID,
		MaxWeightLbs:  r.Truck.MaxWeightLbs,
		MaxVolumeCuft: r.Truck.MaxVolumeCuft,
	}
	return truck, ordersToDomain(r.Orders)
}

func (r *ValidateRequest) ToDomain() []Order {
	return ordersToDomain(r.Orders)
}

func ordersToDomain(inputs []OrderInput) []Order {
	orders := make([]Order, 0, len(inputs))
	for i := range inputs {
		orders = append(orders, inputs[i].ToDomain())
	}
	return orders
}

func (o *OrderInput) ToDomain() Order {
	pickup, _ := time.Parse(DateLayout, o.PickupDate)
	delivery, _ := time.Parse(DateLayout, o.DeliveryDate)

	return Order{
		ID:           o.ID,
		Payout:       Money(o.PayoutCents),
		WeightLbs:    o.WeightLbs,
		VolumeCuft:   o.VolumeCuft,
		Origin:       o.Origin,
		Destination:  o.Destination,
		PickupDate:   pickup,
		DeliveryDate: delivery,
		IsHazmat:     o.IsHazmat,
	}
}
