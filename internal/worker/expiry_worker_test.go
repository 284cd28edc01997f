package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeCompleter) CompleteExpired(_ context.Context, now time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return nil, f.err
}

func (f *fakeCompleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestExpiryWorker_RunsUntilCancelled(t *testing.T) {
	fc := &fakeCompleter{}
	w := NewExpiryWorker(fc, 10*time.Millisecond)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for fc.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", fc.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected worker to stop after cancel")
	}
	if !fc.calls[0].Equal(fixed) {
		t.Errorf("expected worker clock %v, got %v", fixed, fc.calls[0])
	}
}

func TestExpiryWorker_KeepsRunningAfterError(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("db down")}
	w := NewExpiryWorker(fc, time.Hour)

	w.run(context.Background())
	w.run(context.Background())
	if fc.count() != 2 {
		t.Errorf("expected 2 runs, got %d", fc.count())
	}
}
