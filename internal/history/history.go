// Package history assembles the requesting user's past winning bids into a
// bounded weighting context for estimate synthesis.
package history

import (
	"context"
	"log"
	"strings"

	"bidforge/internal/estimate"
)

// maxBids bounds how much historical context is injected into one synthesis
// prompt. More bids add latency and prompt size without much signal.
const maxBids = 5

// StatusWon is the only ledger status eligible for weighting context.
const StatusWon = "won"

// BidSource supplies a user's historical bids from the ledger. The limit is
// advisory; the builder re-enforces both the bound and the status filter.
type BidSource interface {
	WonBids(ctx context.Context, userID string, limit int) ([]estimate.HistoricalBid, error)
}

// ContextBuilder fetches winning-bid context and degrades to nothing when the
// ledger is unreachable. Historical context is an optimization, not a
// correctness requirement.
type ContextBuilder struct {
	source BidSource
	logger *log.Logger
}

func NewContextBuilder(source BidSource, logger *log.Logger) *ContextBuilder {
	if logger == nil {
		logger = log.Default()
	}
	return &ContextBuilder{source: source, logger: logger}
}

// Build returns up to five of the user's won bids. Any source error is
// logged and absorbed to an empty slice.
func (b *ContextBuilder) Build(ctx context.Context, userID string) []estimate.HistoricalBid {
	if b == nil || b.source == nil || strings.TrimSpace(userID) == "" {
		return nil
	}
	bids, err := b.source.WonBids(ctx, userID, maxBids)
	if err != nil {
		b.logger.Printf("history context unavailable for user %s: %v", userID, err)
		return nil
	}

	out := make([]estimate.HistoricalBid, 0, maxBids)
	for _, bid := range bids {
		if !strings.EqualFold(strings.TrimSpace(bid.Status), StatusWon) {
			continue
		}
		out = append(out, bid)
		if len(out) == maxBids {
			break
		}
	}
	return out
}
