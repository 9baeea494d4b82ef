package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"bidforge/internal/estimate"
)

func record(id, user, status string, margin float64, at time.Time) Record {
	return Record{
		ID:        id,
		UserID:    user,
		Scope:     "Scope " + id,
		Location:  "Austin, TX",
		Status:    status,
		Margin:    margin,
		CreatedAt: at,
	}
}

func TestMemoryStore_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	rec := record("e1", "u1", StatusPending, 30, base)
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A retried accept with drifted fields must not overwrite the original.
	retry := rec
	retry.Margin = 99
	if err := s.Save(ctx, retry); err != nil {
		t.Fatalf("retry save: %v", err)
	}

	hist, err := s.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("records: got=%d want=1", len(hist))
	}
	if hist[0].Margin != 30 {
		t.Fatalf("retry overwrote record: margin=%v", hist[0].Margin)
	}
}

func TestMemoryStore_HistoryNewestFirstPerUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	_ = s.Save(ctx, record("old", "u1", StatusPending, 0, base.Add(-2*time.Hour)))
	_ = s.Save(ctx, record("new", "u1", StatusPending, 0, base))
	_ = s.Save(ctx, record("other", "u2", StatusPending, 0, base))

	hist, err := s.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 || hist[0].ID != "new" || hist[1].ID != "old" {
		t.Fatalf("order wrong: %+v", hist)
	}
}

func TestMemoryStore_UpdateStatusAndWonBids(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	for i, id := range []string{"a", "b", "c"} {
		_ = s.Save(ctx, record(id, "u1", StatusPending, 20, base.Add(time.Duration(i)*time.Minute)))
	}
	if err := s.UpdateStatus(ctx, "u1", "a", StatusWon, 35); err != nil {
		t.Fatalf("update a: %v", err)
	}
	if err := s.UpdateStatus(ctx, "u1", "b", StatusLost, 0); err != nil {
		t.Fatalf("update b: %v", err)
	}

	bids, err := s.WonBids(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("won bids: %v", err)
	}
	if len(bids) != 1 || bids[0].Margin != 35 || bids[0].Status != StatusWon {
		t.Fatalf("won bids: %+v", bids)
	}
	// Project summary wins over scope as the bid name when present.
	if bids[0].Name != "Scope a" {
		t.Fatalf("bid name: got=%q", bids[0].Name)
	}
}

func TestMemoryStore_WonBidsUsesSummaryAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	for i := 0; i < 7; i++ {
		rec := record(string(rune('a'+i)), "u1", StatusWon, 25, base.Add(time.Duration(i)*time.Minute))
		rec.Result = estimate.EstimateResult{ProjectSummary: "ADU build " + rec.ID}
		_ = s.Save(ctx, rec)
	}
	bids, err := s.WonBids(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("won bids: %v", err)
	}
	if len(bids) != 5 {
		t.Fatalf("limit ignored: got=%d", len(bids))
	}
	// Newest first.
	if bids[0].Name != "ADU build g" {
		t.Fatalf("newest bid first: got=%q", bids[0].Name)
	}
}

func TestMemoryStore_UserIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Save(ctx, record("e1", "u1", StatusPending, 0, time.Now().UTC()))

	if err := s.UpdateStatus(ctx, "u2", "e1", StatusWon, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user update: want ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "u2", "e1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete: want ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "u1", "e1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	hist, _ := s.History(ctx, "u1")
	if len(hist) != 0 {
		t.Fatalf("record not deleted: %+v", hist)
	}
}
