// Package crm stores the lead-tracking and waitlist records behind the
// dashboard's ancillary screens. Plain CRUD; lead scoring comes from the
// external voice-agent vendor and is stored as-is.
package crm

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("crm: record not found")

// Lead temperature buckets as the dashboard renders them.
const (
	LeadHot  = "Hot"
	LeadWarm = "Warm"
	LeadCold = "Cold"
)

type Lead struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Trade          string    `json:"trade"`
	Status         string    `json:"status"`
	Score          float64   `json:"score"`
	Summary        string    `json:"summary"`
	ActionRequired bool      `json:"actionRequired"`
	CreatedAt      time.Time `json:"createdAt"`
}

type WaitlistEntry struct {
	Email     string    `json:"email"`
	Trade     string    `json:"trade"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	SaveLead(ctx context.Context, lead Lead) error
	Leads(ctx context.Context, userID string) ([]Lead, error)
	DeleteLead(ctx context.Context, userID, id string) error

	AddWaitlist(ctx context.Context, entry WaitlistEntry) error
	Waitlist(ctx context.Context) ([]WaitlistEntry, error)
}
