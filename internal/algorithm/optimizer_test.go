package algorithm

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"load-optimizer/internal/domain"
)

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newSelector() *CombinationSelector {
	return NewCombinationSelector(domain.NewCompatibilityValidator(domain.DefaultMaxWindowDays))
}

func standardTruck() domain.Truck {
	return domain.Truck{ID: "truck-123", MaxWeightLbs: 44000, MaxVolumeCuft: 3000}
}

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID: "ord-001", Payout: 250000, WeightLbs: 18000, VolumeCuft: 1200,
			Origin: "Los Angeles, CA", Destination: "Dallas, TX",
			PickupDate: date("2025-12-05"), DeliveryDate: date("2025-12-09"),
		},
		{
			ID: "ord-002", Payout: 180000, WeightLbs: 12000, VolumeCuft: 900,
			Origin: "Los Angeles, CA", Destination: "Dallas, TX",
			PickupDate: date("2025-12-04"), DeliveryDate: date("2025-12-10"),
		},
		{
			ID: "ord-003", Payout: 320000, WeightLbs: 30000, VolumeCuft: 1800,
			Origin: "Los Angeles, CA", Destination: "Dallas, TX",
			PickupDate: date("2025-12-06"), DeliveryDate: date("2025-12-08"),
			IsHazmat: true,
		},
	}
}

func TestOptimizeBasic(t *testing.T) {
	result := newSelector().Optimize(standardTruck(), sampleOrders())

	if result.TruckID != "truck-123" {
		t.Errorf("truck id = %q", result.TruckID)
	}
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-001", "ord-002"}) {
		t.Fatalf("selected = %v, want [ord-001 ord-002]", got)
	}
	if result.TotalPayout != 430000 {
		t.Errorf("payout = %d, want 430000", result.TotalPayout)
	}
	if result.TotalWeight != 30000 || result.TotalVolume != 2100 {
		t.Errorf("weight/volume = %d/%d, want 30000/2100", result.TotalWeight, result.TotalVolume)
	}
	if result.UtilizationWeightPercent != 68.18 {
		t.Errorf("weight utilization = %v, want 68.18", result.UtilizationWeightPercent)
	}
	if result.UtilizationVolumePercent != 70 {
		t.Errorf("volume utilization = %v, want 70", result.UtilizationVolumePercent)
	}
}

func TestOptimizeEmpty(t *testing.T) {
	result := newSelector().Optimize(standardTruck(), nil)

	if !result.Empty() || result.TotalPayout != 0 || result.TotalWeight != 0 || result.TotalVolume != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.UtilizationWeightPercent != 0 || result.UtilizationVolumePercent != 0 {
		t.Fatalf("expected zero utilization, got %+v", result)
	}
	if ids := result.SelectedOrderIDs(); ids == nil || len(ids) != 0 {
		t.Fatalf("expected non-nil empty ids, got %#v", ids)
	}
}

func TestOptimizeAllOverweight(t *testing.T) {
	truck := domain.Truck{ID: "truck-123", MaxWeightLbs: 10000, MaxVolumeCuft: 3000}

	result := newSelector().Optimize(truck, sampleOrders())
	if !result.Empty() {
		t.Fatalf("expected nothing to fit, got %v", result.SelectedOrderIDs())
	}
}

func TestOptimizeSingleOrder(t *testing.T) {
	order := sampleOrders()[2]

	result := newSelector().Optimize(standardTruck(), []domain.Order{order})
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-003"}) {
		t.Fatalf("selected = %v, want [ord-003]", got)
	}
	if result.TotalPayout != order.Payout || result.TotalWeight != order.WeightLbs || result.TotalVolume != order.VolumeCuft {
		t.Fatalf("totals = %+v, want the order's own values", result)
	}
}

func TestOptimizeHazmatMixNeverCoSelected(t *testing.T) {
	orders := sampleOrders()[:2]
	orders[1].IsHazmat = true
	orders[1].Payout = 300000

	result := newSelector().Optimize(standardTruck(), orders)
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-002"}) {
		t.Fatalf("selected = %v, want [ord-002]", got)
	}
}

func TestOptimizeDifferentRoutes(t *testing.T) {
	orders := sampleOrders()[:2]
	orders[1].Origin = "Chicago, IL"
	orders[1].Payout = 300000

	result := newSelector().Optimize(standardTruck(), orders)
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-002"}) {
		t.Fatalf("selected = %v, want [ord-002]", got)
	}
}

func TestOptimizeWindowTooWide(t *testing.T) {
	orders := sampleOrders()[:2]
	orders[1].PickupDate = date("2025-12-28")
	orders[1].DeliveryDate = date("2026-01-10")

	result := newSelector().Optimize(standardTruck(), orders)
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-001"}) {
		t.Fatalf("selected = %v, want [ord-001]", got)
	}
}

func TestOptimizeSkipsOversizedOrder(t *testing.T) {
	orders := sampleOrders()[:2]
	orders = append(orders, domain.Order{
		ID: "ord-huge", Payout: 9000000, WeightLbs: 45000, VolumeCuft: 100,
		Origin: "Los Angeles, CA", Destination: "Dallas, TX",
		PickupDate: date("2025-12-05"), DeliveryDate: date("2025-12-09"),
	})

	result := newSelector().Optimize(standardTruck(), orders)
	for _, id := range result.SelectedOrderIDs() {
		if id == "ord-huge" {
			t.Fatalf("oversized order selected: %v", result.SelectedOrderIDs())
		}
	}
	if result.TotalPayout != 430000 {
		t.Fatalf("payout = %d, want 430000", result.TotalPayout)
	}
	if result.Filtered != 1 {
		t.Fatalf("filtered = %d, want 1", result.Filtered)
	}
}

func TestOptimizeCapacityLimitsCombination(t *testing.T) {
	orders := sampleOrders()[:2]
	// Together they need 3100 cuft against 3000.
	orders[1].VolumeCuft = 1900

	result := newSelector().Optimize(standardTruck(), orders)
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-001"}) {
		t.Fatalf("selected = %v, want [ord-001]", got)
	}
}

func TestOptimizeTieKeepsFirstFound(t *testing.T) {
	orders := sampleOrders()[:2]
	orders[0].Payout = 200000
	orders[1].Payout = 200000
	orders[1].Destination = "Houston, TX"

	result := newSelector().Optimize(standardTruck(), orders)
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-001"}) {
		t.Fatalf("selected = %v, want [ord-001]", got)
	}

	orders[0], orders[1] = orders[1], orders[0]
	result = newSelector().Optimize(standardTruck(), orders)
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, []string{"ord-002"}) {
		t.Fatalf("swapped input: selected = %v, want [ord-002]", got)
	}
}

func TestOptimizeKeepsInputOrderAfterFilter(t *testing.T) {
	orders := sampleOrders()
	orders[2].IsHazmat = false
	orders[2].WeightLbs = 10000
	orders[2].VolumeCuft = 800
	orders = append([]domain.Order{{ID: "ord-heavy", Payout: 1, WeightLbs: 50000, VolumeCuft: 1}}, orders...)

	result := newSelector().Optimize(standardTruck(), orders)
	want := []string{"ord-001", "ord-002", "ord-003"}
	if got := result.SelectedOrderIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("selected = %v, want %v", got, want)
	}
}

func TestOptimizePanicsBeyondMaskWidth(t *testing.T) {
	orders := make([]domain.Order, MaxEnumerable+1)
	for i := range orders {
		orders[i] = domain.Order{WeightLbs: 1, VolumeCuft: 1}
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for oversized candidate set")
		}
	}()
	newSelector().Optimize(standardTruck(), orders)
}

func randomOrders(rng *rand.Rand, n int) []domain.Order {
	origins := []string{"Los Angeles, CA", "Phoenix, AZ"}
	base := date("2025-12-01")
	orders := make([]domain.Order, n)
	for i := range orders {
		pickup := base.AddDate(0, 0, rng.Intn(35))
		orders[i] = domain.Order{
			ID:           string(rune('A' + i)),
			Payout:       domain.Money(rng.Intn(400000)),
			WeightLbs:    1000 + rng.Intn(25000),
			VolumeCuft:   100 + rng.Intn(1800),
			Origin:       origins[rng.Intn(len(origins))],
			Destination:  "Dallas, TX",
			PickupDate:   pickup,
			DeliveryDate: pickup.AddDate(0, 0, rng.Intn(6)),
			IsHazmat:     rng.Intn(3) == 0,
		}
	}
	return orders
}

// bestPayout is an independent reference: every subset of the raw input,
// summed from scratch and checked with the reason-reporting validator.
func bestPayout(truck domain.Truck, orders []domain.Order) domain.Money {
	v := domain.NewCompatibilityValidator(domain.DefaultMaxWindowDays)
	var best domain.Money
	for mask := 1; mask < 1<<len(orders); mask++ {
		var subset []domain.Order
		var payout domain.Money
		weight, volume := 0, 0
		for i, o := range orders {
			if mask&(1<<i) != 0 {
				subset = append(subset, o)
				payout += o.Payout
				weight += o.WeightLbs
				volume += o.VolumeCuft
			}
		}
		if weight > truck.MaxWeightLbs || volume > truck.MaxVolumeCuft {
			continue
		}
		if ok, _ := v.Validate(subset); ok && payout > best {
			best = payout
		}
	}
	return best
}

func TestOptimizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	truck := standardTruck()
	validator := domain.NewCompatibilityValidator(domain.DefaultMaxWindowDays)
	selector := NewCombinationSelector(validator)

	for round := 0; round < 30; round++ {
		orders := randomOrders(rng, 10)
		result := selector.Optimize(truck, orders)

		if want := bestPayout(truck, orders); result.TotalPayout != want {
			t.Fatalf("round %d: payout = %d, want optimum %d", round, result.TotalPayout, want)
		}

		if result.TotalWeight > truck.MaxWeightLbs || result.TotalVolume > truck.MaxVolumeCuft {
			t.Fatalf("round %d: over capacity: %+v", round, result)
		}
		if ok, reason := validator.Validate(result.SelectedOrders); !ok {
			t.Fatalf("round %d: incompatible selection: %s", round, reason)
		}

		var payout domain.Money
		weight, volume := 0, 0
		for _, o := range result.SelectedOrders {
			payout += o.Payout
			weight += o.WeightLbs
			volume += o.VolumeCuft
		}
		if payout != result.TotalPayout || weight != result.TotalWeight || volume != result.TotalVolume {
			t.Fatalf("round %d: totals do not match selected orders", round)
		}

		if again := selector.Optimize(truck, orders); !reflect.DeepEqual(again, result) {
			t.Fatalf("round %d: repeated call differs:\n%+v\n%+v", round, result, again)
		}

		for drop := range orders {
			rest := append(append([]domain.Order{}, orders[:drop]...), orders[drop+1:]...)
			if reduced := selector.Optimize(truck, rest); reduced.TotalPayout > result.TotalPayout {
				t.Fatalf("round %d: dropping %s raised payout %d -> %d",
					round, orders[drop].ID, result.TotalPayout, reduced.TotalPayout)
			}
		}
	}
}

func BenchmarkOptimize22(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	orders := randomOrders(rng, 22)
	for i := range orders {
		orders[i].Origin = "Los Angeles, CA"
		orders[i].WeightLbs = 5000 + rng.Intn(10000)
		orders[i].VolumeCuft = 200 + rng.Intn(600)
	}
	selector := newSelector()
	truck := standardTruck()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		selector.Optimize(truck, orders)
	}
}
