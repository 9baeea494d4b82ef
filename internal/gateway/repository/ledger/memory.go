package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bidforge/internal/estimate"
)

// MemoryStore keeps the ledger in process memory. Used for local runs and
// tests; it is thread-safe.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[rec.ID]; exists {
		// Accept retries are no-ops.
		return nil
	}
	s.byID[rec.ID] = rec
	return nil
}

func (s *MemoryStore) History(_ context.Context, userID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for _, rec := range s.byID {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, userID, id, status string, margin float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok || rec.UserID != userID {
		return ErrNotFound
	}
	rec.Status = strings.ToLower(strings.TrimSpace(status))
	rec.Margin = margin
	s.byID[id] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok || rec.UserID != userID {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) WonBids(_ context.Context, userID string, limit int) ([]estimate.HistoricalBid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var won []Record
	for _, rec := range s.byID {
		if rec.UserID == userID && rec.Status == StatusWon {
			won = append(won, rec)
		}
	}
	sort.Slice(won, func(i, j int) bool { return won[i].CreatedAt.After(won[j].CreatedAt) })
	if limit > 0 && len(won) > limit {
		won = won[:limit]
	}
	bids := make([]estimate.HistoricalBid, 0, len(won))
	for _, rec := range won {
		bids = append(bids, toBid(rec))
	}
	return bids, nil
}
