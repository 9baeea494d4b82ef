// Package llm wraps the external generative model behind a small provider
// contract so the estimate pipeline can be driven by a deterministic fake in
// tests and by Gemini in production.
package llm

import (
	"context"
	"encoding/json"

	"bidforge/internal/estimate"
	"bidforge/internal/market"
)

// SynthesisRequest carries everything the final generation pass needs: the
// original project input plus the grounding and historical context assembled
// by the earlier pipeline stages.
type SynthesisRequest struct {
	Project   estimate.ProjectRequest
	Grounding []market.PriceRecord
	Bids      []estimate.HistoricalBid
}

// SynthesisResponse is the raw structured output of the final pass together
// with whatever citation metadata the model reported. Raw is guaranteed to
// be parseable JSON; it is NOT guaranteed to satisfy the estimate schema.
type SynthesisResponse struct {
	Raw       json.RawMessage
	Citations []estimate.GroundingSource
}

// Generator is the two-pass generation provider contract.
//
// IdentifyMaterials is best effort: a malformed materials list degrades to
// empty instead of erroring, and any error it does return is absorbable.
// Synthesize failures are fatal to the request that triggered them.
type Generator interface {
	Name() string
	IdentifyMaterials(ctx context.Context, scope, location string) ([]string, error)
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResponse, error)
	Close() error
}
