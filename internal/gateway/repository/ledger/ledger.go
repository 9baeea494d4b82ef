// Package ledger persists accepted estimates per contractor and serves the
// historical-bid context the synthesis pipeline weights against.
package ledger

import (
	"context"
	"errors"
	"time"

	"bidforge/internal/estimate"
)

// Bid status values tracked on a ledger record. Only StatusWon feeds back
// into synthesis as weighting context.
const (
	StatusPending = "pending"
	StatusWon     = "won"
	StatusLost    = "lost"
)

var ErrNotFound = errors.New("ledger: record not found")

// Record is one accepted estimate in a user's ledger.
type Record struct {
	ID        string                    `json:"id"`
	UserID    string                    `json:"userId"`
	Scope     string                    `json:"scope"`
	Location  string                    `json:"location"`
	Status    string                    `json:"status"`
	Margin    float64                   `json:"margin"`
	Result    estimate.EstimateResult   `json:"result"`
	Summary   estimate.FinancialSummary `json:"summary"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// Store is the ledger boundary. Save is idempotent by record ID so a retried
// accept does not duplicate history.
type Store interface {
	Save(ctx context.Context, rec Record) error
	History(ctx context.Context, userID string) ([]Record, error)
	UpdateStatus(ctx context.Context, userID, id, status string, margin float64) error
	Delete(ctx context.Context, userID, id string) error
	WonBids(ctx context.Context, userID string, limit int) ([]estimate.HistoricalBid, error)
}

func toBid(rec Record) estimate.HistoricalBid {
	name := rec.Result.ProjectSummary
	if name == "" {
		name = rec.Scope
	}
	return estimate.HistoricalBid{Name: name, Status: rec.Status, Margin: rec.Margin}
}
