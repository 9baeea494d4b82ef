package crm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_Leads(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	_ = s.SaveLead(ctx, Lead{ID: "l1", UserID: "u1", Name: "Alex", Status: LeadHot, CreatedAt: base.Add(-time.Hour)})
	_ = s.SaveLead(ctx, Lead{ID: "l2", UserID: "u1", Name: "Sam", Status: LeadWarm, CreatedAt: base})
	_ = s.SaveLead(ctx, Lead{ID: "l3", UserID: "u2", Name: "Kim", Status: LeadCold, CreatedAt: base})

	leads, err := s.Leads(ctx, "u1")
	if err != nil {
		t.Fatalf("leads: %v", err)
	}
	if len(leads) != 2 || leads[0].ID != "l2" {
		t.Fatalf("leads wrong: %+v", leads)
	}

	// Saving the same ID updates in place.
	_ = s.SaveLead(ctx, Lead{ID: "l1", UserID: "u1", Name: "Alex", Status: LeadCold, CreatedAt: base.Add(-time.Hour)})
	leads, _ = s.Leads(ctx, "u1")
	if len(leads) != 2 || leads[1].Status != LeadCold {
		t.Fatalf("update not applied: %+v", leads)
	}

	if err := s.DeleteLead(ctx, "u2", "l1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete: want ErrNotFound, got %v", err)
	}
	if err := s.DeleteLead(ctx, "u1", "l1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestMemoryStore_WaitlistFirstSignupWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	_ = s.AddWaitlist(ctx, WaitlistEntry{Email: "pat@example.com", Trade: "electrical", CreatedAt: base.Add(-time.Hour)})
	_ = s.AddWaitlist(ctx, WaitlistEntry{Email: "PAT@example.com", Trade: "plumbing", CreatedAt: base})

	entries, err := s.Waitlist(ctx)
	if err != nil {
		t.Fatalf("waitlist: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries: got=%d want=1", len(entries))
	}
	if entries[0].Trade != "electrical" {
		t.Fatalf("second signup overwrote the first: %+v", entries[0])
	}
}
