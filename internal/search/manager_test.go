package search_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/search"
	"empregozap-engine/internal/store"
)

func newManager(t *testing.T) (*search.Manager, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return search.NewManager(st, zap.NewNop().Sugar()), st
}

func TestSubmit_NewSearch(t *testing.T) {
	mgr, _ := newManager(t)

	s, shouldRun, err := mgr.Submit(context.Background(), "u1", "Engenheiro", "São Paulo", "SP", "5511999999999")
	require.NoError(t, err)
	assert.True(t, shouldRun)
	assert.Equal(t, domain.StatusPending, s.Status)
	assert.Equal(t, "Engenheiro", s.Role)
}

func TestSubmit_IdenticalParamsIsNoOp(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()

	first, _, err := mgr.Submit(ctx, "u1", "Engenheiro", "São Paulo", "SP", "5511999999999")
	require.NoError(t, err)

	again, shouldRun, err := mgr.Submit(ctx, "u1", "Engenheiro", "São Paulo", "SP", "5511999999999")
	require.NoError(t, err)
	assert.False(t, shouldRun)
	assert.Equal(t, first.ID, again.ID)
}

func TestSubmit_ContactOnlyChange(t *testing.T) {
	mgr, st := newManager(t)
	ctx := context.Background()

	first, _, err := mgr.Submit(ctx, "u1", "Engenheiro", "São Paulo", "SP", "5511999999999")
	require.NoError(t, err)

	// A new number alone refreshes the contact without triggering a run.
	_, shouldRun, err := mgr.Submit(ctx, "u1", "Engenheiro", "São Paulo", "SP", "5511888888888")
	require.NoError(t, err)
	assert.False(t, shouldRun)

	cur, err := st.SearchByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "5511888888888", cur.Contact)
}

func TestSubmit_ChangedParamsResetsToPending(t *testing.T) {
	mgr, st := newManager(t)
	ctx := context.Background()

	first, _, err := mgr.Submit(ctx, "u1", "Engenheiro", "São Paulo", "SP", "5511999999999")
	require.NoError(t, err)
	require.NoError(t, st.SetStatus(ctx, first.ID, domain.StatusActive))

	updated, shouldRun, err := mgr.Submit(ctx, "u1", "Analista", "Campinas", "SP", "5511999999999")
	require.NoError(t, err)
	assert.True(t, shouldRun)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, "Analista", updated.Role)
}

func TestTransition_RejectsInvalid(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()

	s, _, err := mgr.Submit(ctx, "u1", "Engenheiro", "São Paulo", "SP", "5511999999999")
	require.NoError(t, err)

	// pending may not jump straight to active.
	err = mgr.Transition(ctx, s.ID, domain.StatusActive)
	require.ErrorIs(t, err, search.ErrInvalidTransition)

	require.NoError(t, mgr.Transition(ctx, s.ID, domain.StatusScraping))
	require.NoError(t, mgr.Transition(ctx, s.ID, domain.StatusActive))

	// active re-enters scraping on the next cycle.
	require.NoError(t, mgr.Transition(ctx, s.ID, domain.StatusScraping))
	require.NoError(t, mgr.Transition(ctx, s.ID, domain.StatusError))
	require.NoError(t, mgr.Transition(ctx, s.ID, domain.StatusScraping))
}
