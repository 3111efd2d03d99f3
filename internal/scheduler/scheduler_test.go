package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Houeta/pricewatch/internal/scheduler"
	"github.com/stretchr/testify/assert"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_RepeatsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		scheduler.Run(ctx, discard(), 10*time.Millisecond, func(context.Context) error {
			if calls.Add(1) == 2 {
				return assert.AnError // failures do not stop the schedule
			}
			return nil
		})
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestRun_FirstPassIsImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	started := make(chan struct{}, 1)
	go scheduler.Run(ctx, discard(), time.Hour, func(context.Context) error {
		started <- struct{}{}
		return nil
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first pass did not run immediately")
	}
}

func TestRun_Disabled(t *testing.T) {
	called := false
	scheduler.Run(t.Context(), discard(), 0, func(context.Context) error {
		called = true
		return nil
	})

	assert.False(t, called)
}

func TestRun_ReturnsAfterInFlightPass(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	started := make(chan struct{})
	var finished atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		scheduler.Run(ctx, discard(), time.Hour, func(jobCtx context.Context) error {
			close(started)
			<-jobCtx.Done()
			time.Sleep(20 * time.Millisecond) // a write still completing after cancellation
			finished.Store(true)
			return jobCtx.Err()
		})
	}()

	<-started
	cancel()

	select {
	case <-done:
		assert.True(t, finished.Load(), "Run returned while a pass was still running")
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
