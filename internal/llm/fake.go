package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"bidforge/internal/estimate"
)

// FakeGenerator returns deterministic payloads for offline use and tests.
// It hard-codes the documented model behaviors that the real provider only
// honors probabilistically (conflict insights, attachment risk flags) so the
// pipeline contract around them stays testable.
type FakeGenerator struct {
	Materials []string
	// RawOverride, when set, is returned verbatim from Synthesize.
	RawOverride json.RawMessage
	Citations   []estimate.GroundingSource

	IdentifyErr   error
	SynthesizeErr error
}

func (f *FakeGenerator) Name() string { return "FakeGenerator" }
func (f *FakeGenerator) Close() error { return nil }

func (f *FakeGenerator) IdentifyMaterials(_ context.Context, _, _ string) ([]string, error) {
	if f.IdentifyErr != nil {
		return nil, f.IdentifyErr
	}
	if f.Materials != nil {
		return f.Materials, nil
	}
	return []string{"lumber 2x4", "drywall 5/8", "concrete mix", "romex 12/2", "r-13 insulation"}, nil
}

func (f *FakeGenerator) Synthesize(_ context.Context, req SynthesisRequest) (*SynthesisResponse, error) {
	if f.SynthesizeErr != nil {
		return nil, f.SynthesizeErr
	}
	citations := f.Citations
	if citations == nil {
		citations = []estimate.GroundingSource{placeholderSource}
	}
	if f.RawOverride != nil {
		return &SynthesisResponse{Raw: f.RawOverride, Citations: citations}, nil
	}

	items := []map[string]any{
		{
			"id": "li-1", "name": "Framing lumber package", "qty": 120.0, "unit": "ea",
			"rate": 8.5, "total": 1020.0, "category": "Material",
			"csi_division": "Div 06 00 00 Wood, Plastics, and Composites",
			"retailerName": "Regional Supply", "storeLink": "https://example.com/lumber",
		},
		{
			"id": "li-2", "name": "Carpentry crew", "qty": 80.0, "unit": "hr",
			"rate": 72.0, "total": 5760.0, "category": "Labor",
			"csi_division": "Div 06 10 00 Rough Carpentry",
			"retailerName": "n/a", "storeLink": "n/a",
		},
		{
			"id": "li-3", "name": "Building permit", "qty": 1.0, "unit": "ls",
			"rate": 900.0, "total": 900.0, "category": "Permit",
			"csi_division": "Div 01 00 00 General Requirements",
			"retailerName": "n/a", "storeLink": "n/a",
		},
	}
	// Grounded prices win over the canned ones, like the instruction demands.
	if len(req.Grounding) > 0 {
		rec := req.Grounding[0]
		items[0]["name"] = rec.Name
		items[0]["rate"] = rec.Price
		items[0]["retailerName"] = rec.Retailer
		items[0]["storeLink"] = rec.Link
	}

	insights := []map[string]any{
		{"type": "compliance", "title": "Permit lead time",
			"text": "Local permitting typically adds two to four weeks.", "impact": "medium"},
		{"type": "market", "title": "Material volatility",
			"text": "Lumber pricing in this region has moved 6% quarter over quarter.", "impact": "low"},
		{"type": "risk", "title": "Schedule pressure",
			"text": "Crew availability is tight in the requested window.", "impact": "low"},
	}
	if spread := marginSpread(req.Bids); spread >= 20 {
		insights = append(insights, map[string]any{
			"type":  "market",
			"title": "Historical margin conflict",
			"text":  fmt.Sprintf("Won bids for similar work diverge by %.0f%% margin; the most recent bid was weighted.", spread),
			"impact": "medium",
		})
	}
	if req.Project.Attachment != nil && len(req.Project.Attachment.Data) < 1024 {
		insights = append(insights, map[string]any{
			"type":  "risk",
			"title": "Ambiguous plan image",
			"text":  "The attached plan is low resolution; a 20% contingency was applied to derived quantities.",
			"impact": "high",
		})
	}

	payload := map[string]any{
		"projectSummary":     fmt.Sprintf("%s — %s", req.Project.Scope, req.Project.Location),
		"paymentTerms":       "30% mobilization, progress draws net 15, 10% retainage on completion.",
		"items":              items,
		"insights":           insights,
		"marketConfidence":   0.82,
		"regionalMultiplier": 1.07,
		"suggestedAgenda":    []string{"Walk the site", "Confirm finish allowances", "Review draw schedule"},
	}
	raw, _ := json.Marshal(payload)
	return &SynthesisResponse{Raw: raw, Citations: citations}, nil
}

func marginSpread(bids []estimate.HistoricalBid) float64 {
	if len(bids) < 2 {
		return 0
	}
	lo, hi := bids[0].Margin, bids[0].Margin
	for _, b := range bids[1:] {
		if b.Margin < lo {
			lo = b.Margin
		}
		if b.Margin > hi {
			hi = b.Margin
		}
	}
	return hi - lo
}
