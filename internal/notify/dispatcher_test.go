package notify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"empregozap-engine/internal/config"
	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/store"
)

type fakeSender struct {
	sent     []string
	numbers  []string
	failAt   int // 1-based send index to fail on; 0 means never
	attempts int
}

func (f *fakeSender) SendText(_ context.Context, number, text string) error {
	f.attempts++
	if f.failAt > 0 && f.attempts == f.failAt {
		return errors.New("channel down")
	}
	f.sent = append(f.sent, text)
	f.numbers = append(f.numbers, number)
	return nil
}

func testNotifyConfig() config.Notify {
	cfg := config.Notify{
		BatchSize:       5,
		DelaySeconds:    2,
		WindowStartHour: 9,
		WindowEndHour:   20,
		MaxPerCycle:     50,
	}
	return cfg
}

func newDispatcherTest(t *testing.T, sender Sender) (*Dispatcher, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	d := NewDispatcher(st, sender, nil, testNotifyConfig(), time.UTC, zap.NewNop().Sugar())
	d.now = func() time.Time { return time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) }
	d.pace = func(ctx context.Context) error { return ctx.Err() }
	return d, st
}

func seedActiveSearch(t *testing.T, st *store.Store, userID string, listingCount int) domain.Search {
	t.Helper()
	ctx := context.Background()

	s, err := st.CreateSearch(ctx, userID, "Engenheiro", "São Paulo", "SP", "5511999999999")
	require.NoError(t, err)
	require.NoError(t, st.SetStatus(ctx, s.ID, domain.StatusActive))

	listings := make([]domain.Listing, listingCount)
	for i := range listings {
		listings[i] = domain.Listing{
			Role:   "Vaga",
			URL:    fmt.Sprintf("https://example.com/%s/%d", userID, i),
			Source: "gupy",
		}
	}
	_, err = st.UpsertListings(ctx, listings, userID)
	require.NoError(t, err)
	return s
}

func TestDispatchAll_BatchesOfFive(t *testing.T) {
	sender := &fakeSender{}
	d, st := newDispatcherTest(t, sender)
	seedActiveSearch(t, st, "u1", 12)

	require.NoError(t, d.DispatchAll(context.Background()))

	// ceil(12/5) messages, everything marked delivered.
	assert.Len(t, sender.sent, 3)
	assert.Equal(t, "5511999999999", sender.numbers[0])

	left, err := st.PrioritizedUnsent(context.Background(), "u1", 50)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestDispatchAll_OutsideWindowSkips(t *testing.T) {
	sender := &fakeSender{}
	d, st := newDispatcherTest(t, sender)
	seedActiveSearch(t, st, "u1", 3)

	d.now = func() time.Time { return time.Date(2025, 6, 2, 21, 30, 0, 0, time.UTC) }

	require.NoError(t, d.DispatchAll(context.Background()))
	assert.Empty(t, sender.sent)

	left, err := st.PrioritizedUnsent(context.Background(), "u1", 50)
	require.NoError(t, err)
	assert.Len(t, left, 3)
}

func TestDispatchAll_FailedSendLeavesUnmarked(t *testing.T) {
	sender := &fakeSender{failAt: 2}
	d, st := newDispatcherTest(t, sender)
	seedActiveSearch(t, st, "u1", 8)

	require.NoError(t, d.DispatchAll(context.Background()))

	// First batch of 5 went out and was marked; the failing second batch
	// must stay undelivered for the next cycle.
	assert.Len(t, sender.sent, 1)
	left, err := st.PrioritizedUnsent(context.Background(), "u1", 50)
	require.NoError(t, err)
	assert.Len(t, left, 3)
}

func TestDispatchAll_UserFailureIsolated(t *testing.T) {
	sender := &fakeSender{failAt: 1}
	d, st := newDispatcherTest(t, sender)
	seedActiveSearch(t, st, "u1", 2)
	seedActiveSearch(t, st, "u2", 2)

	require.NoError(t, d.DispatchAll(context.Background()))

	// u1's send failed but u2 still got their message.
	assert.Len(t, sender.sent, 1)
	left, err := st.PrioritizedUnsent(context.Background(), "u2", 50)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestWithinWorkingHours_Bounds(t *testing.T) {
	d := &Dispatcher{cfg: testNotifyConfig(), loc: time.UTC}

	at := func(hour int) func() time.Time {
		return func() time.Time { return time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC) }
	}

	d.now = at(8)
	assert.False(t, d.WithinWorkingHours())
	d.now = at(9)
	assert.True(t, d.WithinWorkingHours())
	d.now = at(19)
	assert.True(t, d.WithinWorkingHours())
	d.now = at(20)
	assert.False(t, d.WithinWorkingHours())
}

func TestSendConfirmation(t *testing.T) {
	sender := &fakeSender{}
	d, _ := newDispatcherTest(t, sender)

	err := d.SendConfirmation(context.Background(), domain.Search{
		Role: "Engenheiro", City: "São Paulo", State: "SP", Contact: "5511999999999",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Nova busca configurada")
}
