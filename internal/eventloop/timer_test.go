package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_RestartCollapsesBursts(t *testing.T) {
	clock := NewManualClock()
	fired := 0
	timer := NewTimer(clock, Immediate, 700*time.Millisecond, func() { fired++ })

	for i := 0; i < 5; i++ {
		timer.Start()
		clock.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, 0, fired, "restarts must postpone the firing")

	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, fired)
	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.False(t, timer.Active())
}

func TestTimer_StopDiscardsFiring(t *testing.T) {
	clock := NewManualClock()
	fired := false
	timer := NewTimer(clock, Immediate, time.Second, func() { fired = true })

	timer.Start()
	require.True(t, timer.Active())
	timer.Stop()
	clock.Advance(2 * time.Second)

	assert.False(t, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestTimer_StaleQueuedFiringIgnored(t *testing.T) {
	clock := NewManualClock()
	var queued []func()
	post := func(fn func()) bool {
		queued = append(queued, fn)
		return true
	}
	fired := 0
	timer := NewTimer(clock, post, time.Second, func() { fired++ })

	timer.Start()
	clock.Advance(time.Second)
	require.Len(t, queued, 1)

	// The firing is sitting in the queue when the timer gets restarted.
	timer.Start()
	queued[0]()
	assert.Equal(t, 0, fired)
	assert.True(t, timer.Active())
}

func TestLoop_RunsInOrderAndStops(t *testing.T) {
	loop := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		require.True(t, loop.Post(func() { order = append(order, i) }))
	}
	require.NoError(t, loop.Call(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2}, order)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.False(t, loop.Post(func() {}))
	assert.ErrorIs(t, loop.Call(context.Background(), func() {}), ErrClosed)
}

func TestLoop_RecoversHandlerPanic(t *testing.T) {
	loop := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loop.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, loop.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}
