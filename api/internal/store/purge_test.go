package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePurger struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (f *fakePurger) PurgeOlderThan(_ context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, olderThan)
	return 1, f.err
}

func (f *fakePurger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPurgeLoopRunsUntilCancelled(t *testing.T) {
	p := &fakePurger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		PurgeLoop(ctx, p, 48*time.Hour, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for p.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("purge ran %d times", p.count())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("loop did not stop on cancel")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range p.calls {
		if d != 48*time.Hour {
			t.Fatalf("purge called with %v", d)
		}
	}
}

func TestPurgeLoopKeepsGoingAfterError(t *testing.T) {
	p := &fakePurger{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go PurgeLoop(ctx, p, time.Hour, 5*time.Millisecond)

	deadline := time.Now().Add(5 * time.Second)
	for p.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("purge ran %d times", p.count())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPurgeLoopDisabled(t *testing.T) {
	p := &fakePurger{}
	PurgeLoop(context.Background(), p, 0, time.Millisecond)
	if p.count() != 0 {
		t.Fatalf("disabled loop must not purge")
	}
}
