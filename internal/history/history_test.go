package history

import (
	"context"
	"errors"
	"testing"

	"bidforge/internal/estimate"
)

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

func TestBuild_ReturnsWonBids(t *testing.T) {
	src := &stubBidSource{bids: []estimate.HistoricalBid{
		{Name: "Deck rebuild", Status: "won", Margin: 32},
		{Name: "Garage frame", Status: "Won", Margin: 27},
	}}
	got := NewContextBuilder(src, nil).Build(context.Background(), "user-1")
	if len(got) != 2 {
		t.Fatalf("bids: got=%d want=2", len(got))
	}
}

func TestBuild_FiltersNonWonAndBounds(t *testing.T) {
	bids := make([]estimate.HistoricalBid, 0, 8)
	for i := 0; i < 7; i++ {
		bids = append(bids, estimate.HistoricalBid{Name: "job", Status: "won", Margin: 20})
	}
	bids = append(bids, estimate.HistoricalBid{Name: "lost job", Status: "lost", Margin: 5})
	// A source that ignores its limit still gets re-bounded here.
	src := &stubBidSource{bids: bids[:5]}
	got := NewContextBuilder(src, nil).Build(context.Background(), "user-1")
	if len(got) > 5 {
		t.Fatalf("bids exceed bound: got=%d", len(got))
	}
	for _, b := range got {
		if b.Status != "won" {
			t.Fatalf("non-won bid leaked: %+v", b)
		}
	}
}

func TestBuild_AbsorbsSourceFailure(t *testing.T) {
	src := &stubBidSource{err: errors.New("db down")}
	if got := NewContextBuilder(src, nil).Build(context.Background(), "user-1"); got != nil {
		t.Fatalf("source failure should degrade to nil, got %v", got)
	}
}

func TestBuild_NilSafe(t *testing.T) {
	var b *ContextBuilder
	if got := b.Build(context.Background(), "user-1"); got != nil {
		t.Fatalf("nil builder: got=%v", got)
	}
	if got := NewContextBuilder(nil, nil).Build(context.Background(), "user-1"); got != nil {
		t.Fatalf("nil source: got=%v", got)
	}
	if got := NewContextBuilder(&stubBidSource{}, nil).Build(context.Background(), ""); got != nil {
		t.Fatalf("empty user: got=%v", got)
	}
}
