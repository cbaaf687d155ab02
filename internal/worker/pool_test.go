package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(context.Background(), 2, 8, zap.NewNop().Sugar())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit("job", func(context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	p.Close()

	assert.EqualValues(t, 5, ran.Load())
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(context.Background(), 1, 1, zap.NewNop().Sugar())
	defer p.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit("blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	// One slot in the queue, then backpressure.
	require.NoError(t, p.Submit("queued", func(context.Context) error { return nil }))

	err := p.Submit("rejected", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
}

func TestPool_SubmitAfterCloseFails(t *testing.T) {
	p := NewPool(context.Background(), 1, 4, zap.NewNop().Sugar())
	p.Close()

	err := p.Submit("late", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrQueueFull))
}

func TestPool_FailedJobDoesNotStopWorkers(t *testing.T) {
	p := NewPool(context.Background(), 1, 4, zap.NewNop().Sugar())

	done := make(chan struct{})
	require.NoError(t, p.Submit("bad", func(context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, p.Submit("good", func(context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool stalled after a failed job")
	}
	p.Close()
}
