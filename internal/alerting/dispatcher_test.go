package alerting_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPoolDispatcherRunsTasks(t *testing.T) {
	t.Parallel()

	dispatcher := alerting.NewPoolDispatcher(context.Background(), 4, 64, zaptest.NewLogger(t))

	var ran atomic.Int32
	for range 50 {
		require.NoError(t, dispatcher.Dispatch("count", func(context.Context) {
			ran.Add(1)
		}))
	}

	dispatcher.Close()
	assert.Equal(t, int32(50), ran.Load())
}

func TestPoolDispatcherRecoversPanics(t *testing.T) {
	t.Parallel()

	dispatcher := alerting.NewPoolDispatcher(context.Background(), 1, 4, zaptest.NewLogger(t))

	var ran atomic.Bool
	require.NoError(t, dispatcher.Dispatch("explode", func(context.Context) {
		panic("boom")
	}))
	require.NoError(t, dispatcher.Dispatch("after", func(context.Context) {
		ran.Store(true)
	}))

	dispatcher.Close()
	assert.True(t, ran.Load())
}

func TestPoolDispatcherDropsWhenQueueIsFull(t *testing.T) {
	t.Parallel()

	dispatcher := alerting.NewPoolDispatcher(context.Background(), 1, 1, zaptest.NewLogger(t))

	started := make(chan struct{})
	release := make(chan struct{})

	require.NoError(t, dispatcher.Dispatch("blocker", func(context.Context) {
		close(started)
		<-release
	}))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("blocking task never started")
	}

	require.NoError(t, dispatcher.Dispatch("queued", func(context.Context) {}))
	require.ErrorIs(t, dispatcher.Dispatch("dropped", func(context.Context) {}), alerting.ErrQueueFull)

	close(release)
	dispatcher.Close()
}

func TestPoolDispatcherRejectsAfterClose(t *testing.T) {
	t.Parallel()

	dispatcher := alerting.NewPoolDispatcher(context.Background(), 2, 2, zaptest.NewLogger(t))
	dispatcher.Close()
	dispatcher.Close()

	err := dispatcher.Dispatch("late", func(context.Context) {})
	require.ErrorIs(t, err, alerting.ErrDispatcherClosed)
}

func TestInlineDispatcherRunsSynchronously(t *testing.T) {
	t.Parallel()

	dispatcher := alerting.NewInlineDispatcher(context.Background(), zaptest.NewLogger(t))
	defer dispatcher.Close()

	ran := false
	require.NoError(t, dispatcher.Dispatch("inline", func(context.Context) { ran = true }))
	assert.True(t, ran)

	require.NoError(t, dispatcher.Dispatch("panic", func(context.Context) { panic("boom") }))
}
