package llm

import (
	"strings"
	"testing"

	"bidforge/internal/estimate"
	"bidforge/internal/market"
)

func TestBuildSynthesisPrompt_IncludesGroundingAndBids(t *testing.T) {
	req := SynthesisRequest{
		Project: estimate.ProjectRequest{
			Scope:       "Deck rebuild",
			Location:    "Austin, TX",
			Description: "300 sqft composite deck",
		},
		Grounding: []market.PriceRecord{
			{Material: "lumber 2x4", Name: "Stud 2x4x8", Price: 3.98, Retailer: "Home Depot", Link: "https://example.com/stud"},
		},
		Bids: []estimate.HistoricalBid{
			{Name: "Deck rebuild 2024", Status: "won", Margin: 32},
		},
	}
	prompt := buildSynthesisPrompt(req)

	if !strings.Contains(prompt, "LIVE_MARKET_GROUNDING_DATA") {
		t.Fatalf("grounding block missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Stud 2x4x8") || !strings.Contains(prompt, "$3.98") {
		t.Fatalf("grounded price missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "PROVIDED_HISTORICAL_BIDS") {
		t.Fatalf("bid block missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Deck rebuild 2024") {
		t.Fatalf("bid entry missing:\n%s", prompt)
	}
}

func TestBuildSynthesisPrompt_OmitsEmptyBlocks(t *testing.T) {
	req := SynthesisRequest{
		Project: estimate.ProjectRequest{
			Scope:       "Deck rebuild",
			Location:    "Austin, TX",
			Description: "300 sqft composite deck",
		},
	}
	prompt := buildSynthesisPrompt(req)

	if strings.Contains(prompt, "LIVE_MARKET_GROUNDING_DATA") {
		t.Fatalf("grounding block should be absent:\n%s", prompt)
	}
	if strings.Contains(prompt, "PROVIDED_HISTORICAL_BIDS") {
		t.Fatalf("bid block should be absent:\n%s", prompt)
	}
}
