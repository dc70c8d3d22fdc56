package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestEveryRunsImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	done := make(chan struct{})
	go func() {
		Every(ctx, 10*time.Millisecond, "test", func(context.Context) error {
			if calls.Add(1) >= 3 {
				cancel()
			}
			return errors.New("keeps going")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Every did not return after cancel")
	}
	if n := calls.Load(); n < 3 {
		t.Errorf("calls = %d, want >= 3", n)
	}
}

func TestEveryZeroIntervalDisabled(t *testing.T) {
	called := false
	Every(context.Background(), 0, "off", func(context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Error("task ran with zero interval")
	}
}
