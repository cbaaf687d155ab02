// Package search owns the lifecycle of a user's standing search: submission
// dedup and the status state machine.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/store"
)

// ErrInvalidTransition is returned when a status flip is not allowed by the
// state machine.
var ErrInvalidTransition = errors.New("search: invalid status transition")

type Manager struct {
	store *store.Store
	log   *zap.SugaredLogger
}

func NewManager(st *store.Store, log *zap.SugaredLogger) *Manager {
	return &Manager{store: st, log: log}
}

// Submit registers or refreshes a user's search profile.
//
// No prior search: a new one is created in pending, shouldRun=true.
// Prior search with different role/city/state: updated in place, reset to
// pending, shouldRun=true. Identical parameters: returned unchanged with
// shouldRun=false, so nothing is re-scraped and no duplicate confirmation
// goes out.
func (m *Manager) Submit(ctx context.Context, userID, role, city, state, contact string) (domain.Search, bool, error) {
	existing, err := m.store.LatestSearchByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		created, err := m.store.CreateSearch(ctx, userID, role, city, state, contact)
		if err != nil {
			return domain.Search{}, false, err
		}
		m.log.Infow("search created", "search_id", created.ID, "user_id", userID, "role", role)
		return created, true, nil
	}
	if err != nil {
		return domain.Search{}, false, err
	}

	if existing.SameParams(role, city, state) {
		if contact != existing.Contact {
			if err := m.store.UpdateContact(ctx, existing.ID, contact); err != nil {
				return domain.Search{}, false, err
			}
			existing.Contact = contact
		}
		m.log.Infow("search unchanged", "search_id", existing.ID, "user_id", userID)
		return existing, false, nil
	}

	updated, err := m.store.UpdateSearchParams(ctx, existing.ID, role, city, state, contact)
	if err != nil {
		return domain.Search{}, false, err
	}
	m.log.Infow("search updated", "search_id", updated.ID, "user_id", userID, "role", role)
	return updated, true, nil
}

// Transition moves a search through the state machine, rejecting flips the
// graph does not allow.
func (m *Manager) Transition(ctx context.Context, id int64, to domain.SearchStatus) error {
	cur, err := m.store.SearchByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.IsTransitionAllowed(cur.Status, to) {
		return fmt.Errorf("%w: %s -> %s (search %d)", ErrInvalidTransition, cur.Status, to, id)
	}
	return m.store.SetStatus(ctx, id, to)
}

// CloseRun finalizes an in-flight run. When the search was re-submitted
// mid-run the row is already back in pending; the queued parameters win and
// the result of the stale run is discarded.
func (m *Manager) CloseRun(ctx context.Context, id int64, to domain.SearchStatus) error {
	flipped, err := m.store.CloseRun(ctx, id, to)
	if err != nil {
		return err
	}
	if !flipped {
		m.log.Infow("run result superseded by re-submission", "search_id", id, "status", to)
	}
	return nil
}
