package domain

import "time"

const DefaultMaxWindowDays = 30

// MaxWindowDaysLimit keeps the window representable as a time.Duration.
const MaxWindowDaysLimit = 100000

// Reason explains why a set of orders cannot share a truck.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonRouteConflict  Reason = "Orders must have same origin and destination"
	ReasonHazmatConflict Reason = "Cannot mix hazmat and non-hazmat orders"
	ReasonInvalidWindow  Reason = "Order has invalid time window"
	ReasonWindowTooWide  Reason = "Time window too wide for combined delivery"
)

func (r Reason) Code() ErrorCode {
	switch r {
	case ReasonRouteConflict:
		return CodeRouteConflict
	case ReasonHazmatConflict:
		return CodeHazmatConflict
	case ReasonInvalidWindow, ReasonWindowTooWide:
		return CodeTimeWindowConflict
	default:
		return ""
	}
}

// CompatibilityValidator decides whether orders may travel together. It holds
// only configuration and is safe for concurrent use.
type CompatibilityValidator struct {
	MaxWindow time.Duration
}

// NewCompatibilityValidator clamps maxWindowDays to 0..MaxWindowDaysLimit.
func NewCompatibilityValidator(maxWindowDays int) CompatibilityValidator {
	maxWindowDays = max(0, min(maxWindowDays, MaxWindowDaysLimit))
	return CompatibilityValidator{MaxWindow: time.Duration(maxWindowDays) * 24 * time.Hour}
}

// Validate checks route, hazmat and time window rules in that order and
// reports the first rule that fails. An empty slice is compatible.
func (v CompatibilityValidator) Validate(orders []Order) (bool, Reason) {
	if len(orders) == 0 {
		return true, ReasonNone
	}

	first := orders[0]
	for _, order := range orders[1:] {
		if !order.SameRoute(first) {
			return false, ReasonRouteConflict
		}
	}

	for _, order := range orders[1:] {
		if order.IsHazmat != first.IsHazmat {
			return false, ReasonHazmatConflict
		}
	}

	minPickup, maxDelivery := first.PickupDate, first.DeliveryDate
	for _, order := range orders {
		if order.DeliveryDate.Before(order.PickupDate) {
			return false, ReasonInvalidWindow
		}
		if order.PickupDate.Before(minPickup) {
			minPickup = order.PickupDate
		}
		if order.DeliveryDate.After(maxDelivery) {
			maxDelivery = order.DeliveryDate
		}
	}
	if maxDelivery.Sub(minPickup) > v.MaxWindow {
		return false, ReasonWindowTooWide
	}

	return true, ReasonNone
}

// CompatibleSubset is the allocation-free form of Validate used during
// enumeration: it applies the same rules to the orders whose index bit is set
// in mask, without reporting a reason.
func (v CompatibilityValidator) CompatibleSubset(orders []Order, mask uint64) bool {
	first := -1
	var minPickup, maxDelivery time.Time

	for i := range orders {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		order := &orders[i]
		if order.DeliveryDate.Before(order.PickupDate) {
			return false
		}
		if first < 0 {
			first = i
			minPickup, maxDelivery = order.PickupDate, order.DeliveryDate
			continue
		}

		head := &orders[first]
		if order.Origin != head.Origin || order.Destination != head.Destination {
			return false
		}
		if order.IsHazmat != head.IsHazmat {
			return false
		}
		if order.PickupDate.Before(minPickup) {
			minPickup = order.PickupDate
		}
		if order.DeliveryDate.After(maxDelivery) {
			maxDelivery = order.DeliveryDate
		}
	}

	return maxDelivery.Sub(minPickup) <= v.MaxWindow
}

func CanFit(truck Truck, currentWeight, currentVolume int, order Order) bool {
	return order.FitsIn(truck.MaxWeightLbs-currentWeight, truck.MaxVolumeCuft-currentVolume)
}

// FilterFeasibleOrders drops orders that exceed the truck on their own.
func FilterFeasibleOrders(truck Truck, orders []Order) []Order {
	feasible := make([]Order, 0, len(orders))

	for _, order := range orders {
		if !order.FitsIn(truck.MaxWeightLbs, truck.MaxVolumeCuft) {
			continue
		}
		feasible = append(feasible, order)
	}

	return feasible
}
