package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStart_FiresRunAtStartCycle(t *testing.T) {
	ran := make(chan struct{})
	s := New(time.UTC, zap.NewNop().Sugar(), Cycle{
		Name: "boot", Spec: "@every 1h", RunAtStart: true,
		Run: func(context.Context) error { close(ran); return nil },
	})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("startup run never fired")
	}
}

func TestStart_TickDuringStartupRunIsSkipped(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	s := New(time.UTC, zap.NewNop().Sugar(), Cycle{
		Name: "slow", Spec: "@every 1h", RunAtStart: true,
		Run: func(context.Context) error {
			runs.Add(1)
			started <- struct{}{}
			<-release
			return nil
		},
	})
	require.NoError(t, s.Start(context.Background()))
	<-started

	// A tick landing while the startup run is still going must return
	// immediately without a second execution.
	tick := make(chan struct{})
	go func() {
		s.cron.Entries()[0].WrappedJob.Run()
		close(tick)
	}()
	select {
	case <-tick:
	case <-time.After(2 * time.Second):
		t.Fatal("overlapping tick was queued instead of skipped")
	}
	assert.EqualValues(t, 1, runs.Load())

	close(release)
	s.Stop()
}

func TestStart_BadSpecFails(t *testing.T) {
	s := New(time.UTC, zap.NewNop().Sugar(), Cycle{
		Name: "broken", Spec: "not a cron line",
		Run: func(context.Context) error { return nil },
	})
	require.Error(t, s.Start(context.Background()))
}
