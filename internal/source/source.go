// Package source defines the capability every job-listing provider
// implements, the raw shape providers return, and the normalizer that maps
// raw results onto the canonical Listing.
package source

import (
	"context"
	"time"
)

// RawListing is the best-effort shape a provider extracts from its site.
// Everything but URL and Role may be missing; the normalizer fills defaults.
// Tri-state booleans are pointers: nil means "the source doesn't say" and
// the normalizer falls back to description heuristics.
type RawListing struct {
	Role         string
	Company      string
	City         string
	State        string
	Description  string
	URL          string
	ContractType string
	Seniority    string
	Remote       *bool
	Confidential *bool
	PublishedAt  *time.Time
	SalaryMin    *float64
	SalaryMax    *float64
}

// Source is the uniform capability contract: given a profile's role, city
// and state, return a best-effort (possibly empty, possibly partial)
// snapshot of matching openings. "No results" is an empty slice, never an
// error.
type Source interface {
	Name() string
	Search(ctx context.Context, role, city, state string) ([]RawListing, error)
}
