package crm

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu       sync.RWMutex
	leads    map[string]Lead
	waitlist map[string]WaitlistEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads:    make(map[string]Lead),
		waitlist: make(map[string]WaitlistEntry),
	}
}

func (s *MemoryStore) SaveLead(_ context.Context, lead Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = lead
	return nil
}

func (s *MemoryStore) Leads(_ context.Context, userID string) ([]Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Lead
	for _, l := range s.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteLead(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok || l.UserID != userID {
		return ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *MemoryStore) AddWaitlist(_ context.Context, entry WaitlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Keyed by email: signing up twice keeps the first timestamp.
	key := strings.ToLower(strings.TrimSpace(entry.Email))
	if _, exists := s.waitlist[key]; !exists {
		s.waitlist[key] = entry
	}
	return nil
}

func (s *MemoryStore) Waitlist(_ context.Context) ([]WaitlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WaitlistEntry, 0, len(s.waitlist))
	for _, e := range s.waitlist {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
