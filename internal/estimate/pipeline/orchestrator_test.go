package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"bidforge/internal/estimate"
	"bidforge/internal/llm"
	"bidforge/internal/market"
)

type stubPriceSource struct {
	records map[string]market.PriceRecord
	err     error
}

func (s *stubPriceSource) LookupPrice(_ context.Context, material, _ string) (*market.PriceRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if rec, ok := s.records[material]; ok {
		return &rec, nil
	}
	return nil, nil
}

type stubBidSource struct {
	bids []estimate.HistoricalBid
	err  error
}

func (s *stubBidSource) WonBids(_ context.Context, _ string, limit int) ([]estimate.HistoricalBid, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.bids) > limit {
		return s.bids[:limit], nil
	}
	return s.bids, nil
}

func validRequest() estimate.ProjectRequest {
	return estimate.ProjectRequest{
		Scope:       "Detached garage conversion to ADU",
		Location:    "Austin, TX",
		Description: "600 sqft, full bath, mini split",
	}
}

func TestSynthesize_FullRun(t *testing.T) {
	prices := &stubPriceSource{records: map[string]market.PriceRecord{
		"lumber 2x4": {Material: "lumber 2x4", Name: "Stud 2x4x8", Price: 3.98, Retailer: "Depot", Link: "https://example.com/stud"},
	}}
	o := New(&llm.FakeGenerator{Materials: []string{"lumber 2x4"}}, prices, &stubBidSource{}, nil)

	result, err := o.Synthesize(context.Background(), validRequest(), "user-1")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(result.Items) == 0 {
		t.Fatalf("no items in result")
	}
	// Grounded price flows into the first material line.
	if result.Items[0].Rate != 3.98 {
		t.Fatalf("grounded rate: got=%v want=3.98", result.Items[0].Rate)
	}
	for _, it := range result.Items {
		if it.Total != it.Qty*it.Rate {
			t.Fatalf("item %q total %v != qty*rate %v", it.Name, it.Total, it.Qty*it.Rate)
		}
	}
	if len(result.GroundingSources) == 0 {
		t.Fatalf("no grounding sources")
	}
	// Market-derived citation precedes model citations.
	if result.GroundingSources[0].URI != "https://example.com/stud" {
		t.Fatalf("first source: got=%q", result.GroundingSources[0].URI)
	}
}

func TestSynthesize_InvalidRequestShortCircuits(t *testing.T) {
	called := false
	gen := &llm.FakeGenerator{IdentifyErr: errors.New("should not be reached")}
	prices := &stubPriceSource{err: errors.New("should not be reached")}
	o := New(gen, prices, &stubBidSource{err: errors.New("should not be reached")}, nil)

	_, err := o.SynthesizeWithProgress(context.Background(), estimate.ProjectRequest{}, "u", func(s estimate.Stage) {
		if s == estimate.StageIdentifying {
			called = true
		}
	})
	var invalid *estimate.InvalidRequestError
	if !errors.As(err, &invalid) {
		t.Fatalf("want InvalidRequestError, got %v", err)
	}
	var pipeErr *estimate.PipelineError
	if !errors.As(err, &pipeErr) || pipeErr.Stage != estimate.StageReceived {
		t.Fatalf("want PipelineError at received, got %v", err)
	}
	if called {
		t.Fatalf("pipeline advanced past validation")
	}
}

func TestSynthesize_DegradesWithoutGroundingOrHistory(t *testing.T) {
	gen := &llm.FakeGenerator{IdentifyErr: errors.New("identify down")}
	prices := &stubPriceSource{err: market.ErrUnavailable}
	bids := &stubBidSource{err: errors.New("db down")}
	o := New(gen, prices, bids, nil)

	result, err := o.Synthesize(context.Background(), validRequest(), "user-1")
	if err != nil {
		t.Fatalf("degraded run should still succeed: %v", err)
	}
	if len(result.Items) == 0 {
		t.Fatalf("no items in degraded result")
	}
	// Ungrounded results carry the reasoning placeholder citation.
	if len(result.GroundingSources) != 1 || result.GroundingSources[0].URI != "#" {
		t.Fatalf("placeholder citation missing: %+v", result.GroundingSources)
	}
}

func TestSynthesize_SynthesisFailureIsFatal(t *testing.T) {
	wrapped := fmt.Errorf("%w: upstream 503", estimate.ErrGenerationUnavailable)
	o := New(&llm.FakeGenerator{SynthesizeErr: wrapped}, nil, &stubBidSource{}, nil)

	_, err := o.Synthesize(context.Background(), validRequest(), "user-1")
	var pipeErr *estimate.PipelineError
	if !errors.As(err, &pipeErr) || pipeErr.Stage != estimate.StageSynthesizing {
		t.Fatalf("want PipelineError at synthesizing, got %v", err)
	}
	if !errors.Is(err, estimate.ErrGenerationUnavailable) {
		t.Fatalf("sentinel not preserved: %v", err)
	}
}

func TestSynthesize_ValidationFailureIsFatal(t *testing.T) {
	o := New(&llm.FakeGenerator{RawOverride: json.RawMessage(`{"items":"not-an-array"}`)}, nil, &stubBidSource{}, nil)

	_, err := o.Synthesize(context.Background(), validRequest(), "user-1")
	var pipeErr *estimate.PipelineError
	if !errors.As(err, &pipeErr) || pipeErr.Stage != estimate.StageValidating {
		t.Fatalf("want PipelineError at validating, got %v", err)
	}
	var schemaErr *estimate.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError inside, got %v", err)
	}
}

func TestSynthesize_StageProgression(t *testing.T) {
	o := New(&llm.FakeGenerator{}, nil, &stubBidSource{}, nil)

	var stages []estimate.Stage
	_, err := o.SynthesizeWithProgress(context.Background(), validRequest(), "user-1", func(s estimate.Stage) {
		stages = append(stages, s)
	})
	if err != nil {
		t.Fatalf("SynthesizeWithProgress: %v", err)
	}
	want := []estimate.Stage{
		estimate.StageReceived,
		estimate.StageIdentifying,
		estimate.StageGrounding,
		estimate.StageContextBuilding,
		estimate.StageSynthesizing,
		estimate.StageValidating,
		estimate.StageDone,
	}
	if len(stages) != len(want) {
		t.Fatalf("stages: got=%v want=%v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stage %d: got=%s want=%s", i, stages[i], want[i])
		}
	}
}

func TestSynthesize_MarginConflictInsight(t *testing.T) {
	bids := &stubBidSource{bids: []estimate.HistoricalBid{
		{Name: "Deck rebuild", Status: "won", Margin: 38},
		{Name: "Garage frame", Status: "won", Margin: 12},
	}}
	o := New(&llm.FakeGenerator{}, nil, bids, nil)

	result, err := o.Synthesize(context.Background(), validRequest(), "user-1")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	found := false
	for _, in := range result.Insights {
		if in.Type == estimate.InsightMarket && in.Title == "Historical margin conflict" {
			found = true
		}
	}
	if !found {
		t.Fatalf("margin conflict insight missing: %+v", result.Insights)
	}
}
