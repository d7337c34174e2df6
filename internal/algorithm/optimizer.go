package algorithm

import (
	"fmt"
	"math"

	"load-optimizer/internal/domain"
)

// MaxEnumerable is the widest candidate set a uint64 membership mask can
// describe. Callers are expected to cap far below it: enumeration is 2^n.
const MaxEnumerable = 63

type Optimizer interface {
	Optimize(truck domain.Truck, orders []domain.Order) Result
}

// Result is the read-only projection of the best selection.
type Result struct {
	TruckID                  string
	SelectedOrders           []domain.Order
	TotalPayout              domain.Money
	TotalWeight              int
	TotalVolume              int
	UtilizationWeightPercent float64
	UtilizationVolumePercent float64
	// Filtered counts orders dropped before the search because they exceed
	// the truck on their own.
	Filtered int
}

func (r Result) SelectedOrderIDs() []string {
	ids := make([]string, len(r.SelectedOrders))
	for i, order := range r.SelectedOrders {
		ids[i] = order.ID
	}
	return ids
}

func (r Result) Empty() bool {
	return len(r.SelectedOrders) == 0
}

type selection struct {
	mask   uint64
	payout domain.Money
	weight int
	volume int
}

// CombinationSelector searches every subset of the capacity-feasible orders
// and keeps the compatible one with the highest payout.
//
// Subsets are visited in ascending mask order, where bit i is the i-th order
// surviving the pre-filter (input order preserved). A later subset replaces
// the best only on strictly greater payout, so the first one found wins ties
// and results are deterministic for a given input ordering.
type CombinationSelector struct {
	validator domain.CompatibilityValidator
}

func NewCombinationSelector(validator domain.CompatibilityValidator) *CombinationSelector {
	return &CombinationSelector{validator: validator}
}

// Optimize never fails. It panics if more than MaxEnumerable orders survive
// the pre-filter; bounding the input is the caller's job.
func (s *CombinationSelector) Optimize(truck domain.Truck, orders []domain.Order) Result {
	feasible := domain.FilterFeasibleOrders(truck, orders)
	filtered := len(orders) - len(feasible)
	orders = feasible
	n := len(orders)
	if n == 0 {
		return buildResult(truck, orders, selection{}, filtered)
	}
	if n > MaxEnumerable {
		panic(fmt.Sprintf("algorithm: %d candidate orders exceed enumerable limit %d", n, MaxEnumerable))
	}

	var best selection
	total := uint64(1) << uint(n)

	for mask := uint64(1); mask < total; mask++ {
		current, fits := accumulate(truck, orders, mask)
		if !fits {
			continue
		}
		// Compatibility only matters for a subset that would replace the best.
		if !current.payout.GreaterThan(best.payout) {
			continue
		}
		if !s.validator.CompatibleSubset(orders, mask) {
			continue
		}
		best = current
	}

	return buildResult(truck, orders, best, filtered)
}

// accumulate adds members in index order and stops at the first one that
// would overflow the truck.
func accumulate(truck domain.Truck, orders []domain.Order, mask uint64) (selection, bool) {
	current := selection{mask: mask}

	for i := range orders {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		order := orders[i]
		if !domain.CanFit(truck, current.weight, current.volume, order) {
			return current, false
		}
		current.weight += order.WeightLbs
		current.volume += order.VolumeCuft
		current.payout = current.payout.Add(order.Payout)
	}

	return current, true
}

func buildResult(truck domain.Truck, orders []domain.Order, best selection, filtered int) Result {
	selected := make([]domain.Order, 0)
	for i := range orders {
		if best.mask&(1<<uint(i)) != 0 {
			selected = append(selected, orders[i])
		}
	}

	return Result{
		TruckID:                  truck.ID,
		SelectedOrders:           selected,
		TotalPayout:              best.payout,
		TotalWeight:              best.weight,
		TotalVolume:              best.volume,
		UtilizationWeightPercent: utilization(best.weight, truck.MaxWeightLbs),
		UtilizationVolumePercent: utilization(best.volume, truck.MaxVolumeCuft),
		Filtered:                 filtered,
	}
}

func utilization(used, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return roundToTwoDecimals(float64(used) / float64(capacity) * 100)
}

func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
