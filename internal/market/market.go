// Package market looks up live unit prices for construction materials from
// an external shopping/price-search provider. Pricing data is an estimate
// quality optimization: "no result" is an expected outcome, and callers are
// expected to absorb provider outages rather than fail on them.
package market

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable marks transport/auth failure against the price-search
// provider, as opposed to a successful lookup with zero results.
var ErrUnavailable = errors.New("price-search provider unavailable")

// PriceRecord is the best-match price for one material in one region.
type PriceRecord struct {
	Material string  `json:"material"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Retailer string  `json:"retailer"`
	Link     string  `json:"link"`
}

// Source resolves a single material to at most one price record.
// A nil record with a nil error means the provider had no results.
type Source interface {
	LookupPrice(ctx context.Context, material, location string) (*PriceRecord, error)
}

// maxFanOut bounds concurrent lookups per grounding round regardless of how
// many materials the identification pass returned.
const maxFanOut = 3

// GroundMaterials issues concurrent lookups for the first maxFanOut materials
// and returns the non-nil records in input order. Individual lookup failures
// are absorbed: a provider that is down degrades grounding to empty, it does
// not fail the round.
func GroundMaterials(ctx context.Context, src Source, materials []string, location string) []PriceRecord {
	if src == nil || len(materials) == 0 {
		return nil
	}
	if len(materials) > maxFanOut {
		materials = materials[:maxFanOut]
	}

	results := make([]*PriceRecord, len(materials))
	var wg sync.WaitGroup
	for i, m := range materials {
		wg.Add(1)
		go func(i int, m string) {
			defer wg.Done()
			rec, err := src.LookupPrice(ctx, m, location)
			if err != nil {
				return
			}
			results[i] = rec
		}(i, m)
	}
	wg.Wait()

	out := make([]PriceRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
