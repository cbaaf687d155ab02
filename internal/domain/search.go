// Package domain holds the core records of the engine: the user's standing
// search profile and the canonical job listing.
//
// Search status graph:
//
//	pending ──► scraping ──► active
//	                │  ▲        │
//	                │  └────────┤ (next cycle re-enters scraping)
//	                ▼           │
//	              error ────────┘
//	                │
//	             scraping (retry on next cycle)
//
// completed behaves like active: a finished run may be re-entered by a
// future scheduled cycle.
package domain

import (
	"fmt"
	"time"
)

// SearchStatus values mirror the status column of the searches table.
type SearchStatus string

const (
	StatusPending   SearchStatus = "pending"
	StatusScraping  SearchStatus = "scraping"
	StatusActive    SearchStatus = "active"
	StatusCompleted SearchStatus = "completed"
	StatusError     SearchStatus = "error"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[SearchStatus][]SearchStatus{
	StatusPending:   {StatusScraping},
	StatusScraping:  {StatusActive, StatusCompleted, StatusError},
	StatusActive:    {StatusScraping},
	StatusCompleted: {StatusScraping},
	StatusError:     {StatusScraping},
}

// ParseSearchStatus converts a raw string to a SearchStatus, returning an
// error for unknown values.
func ParseSearchStatus(s string) (SearchStatus, error) {
	st := SearchStatus(s)
	switch st {
	case StatusPending, StatusScraping, StatusActive, StatusCompleted, StatusError:
		return st, nil
	}
	return "", fmt.Errorf("unknown search status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to SearchStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Search is a user's standing job-search profile plus its execution state.
// The most recently created row per user is the canonical one.
type Search struct {
	ID        int64        `json:"id"`
	UserID    string       `json:"user_id"`
	Role      string       `json:"cargo"`
	City      string       `json:"cidade"`
	State     string       `json:"estado"`
	Contact   string       `json:"whatsapp"`
	Status    SearchStatus `json:"status"`
	LastRunAt *time.Time   `json:"last_run,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SameParams reports whether a re-submission with the given parameters is a
// no-op. Contact changes alone do not warrant a re-run.
func (s Search) SameParams(role, city, state string) bool {
	return s.Role == role && s.City == city && s.State == state
}
