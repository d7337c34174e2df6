// Package cache stores optimisation responses keyed by their input so that
// repeated identical requests skip the subset search.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"load-optimizer/internal/domain"
)

var ErrMiss = errors.New("cache: miss")

type Cache interface {
	Get(ctx context.Context, key string) (*domain.OptimizeResponse, error)
	Set(ctx context.Context, key string, resp *domain.OptimizeResponse) error
}

type keyOrder struct {
	ID       string       `json:"i"`
	Payout   domain.Money `json:"p"`
	Weight   int          `json:"w"`
	Volume   int          `json:"v"`
	Origin   string       `json:"o"`
	Dest     string       `json:"d"`
	Pickup   string       `json:"pu"`
	Delivery string       `json:"de"`
	Hazmat   bool         `json:"h"`
}

type keyInput struct {
	TruckID   string     `json:"t"`
	MaxWeight int        `json:"mw"`
	MaxVolume int        `json:"mv"`
	MaxWindow int64      `json:"win"`
	Orders    []keyOrder `json:"o"`
}

// Key derives a stable cache key from the optimiser input. Order sequence is
// part of the key because it decides tie-breaks.
func Key(truck domain.Truck, orders []domain.Order, validator domain.CompatibilityValidator) string {
	in := keyInput{
		TruckID:   truck.ID,
		MaxWeight: truck.MaxWeightLbs,
		MaxVolume: truck.MaxVolumeCuft,
		MaxWindow: int64(validator.MaxWindow),
		Orders:    make([]keyOrder, len(orders)),
	}
	for i, o := range orders {
		in.Orders[i] = keyOrder{
			ID:       o.ID,
			Payout:   o.Payout,
			Weight:   o.WeightLbs,
			Volume:   o.VolumeCuft,
			Origin:   o.Origin,
			Dest:     o.Destination,
			Pickup:   o.PickupDate.Format(domain.DateLayout),
			Delivery: o.DeliveryDate.Format(domain.DateLayout),
			Hazmat:   o.IsHazmat,
		}
	}

	// Marshalling plain structs of strings and ints cannot fail.
	b, _ := json.Marshal(in)
	return "loadopt:" + strconv.FormatUint(xxhash.Sum64(b), 16)
}
