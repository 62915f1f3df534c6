package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGateRejectsWhenFull(t *testing.T) {
	g := NewGate(2, 0)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	if err := g.Acquire(ctx); !errors.Is(err, ErrGateFull) {
		t.Fatalf("third Acquire = %v, want ErrGateFull", err)
	}
	if g.Rejected() != 1 {
		t.Errorf("rejected = %d, want 1", g.Rejected())
	}

	g.Release()
	if err := g.Acquire(ctx); err != nil {
		t.Errorf("Acquire after Release failed: %v", err)
	}
}

func TestGateWaitsForSlot(t *testing.T) {
	g := NewGate(1, time.Second)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	g.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("waiting Acquire = %v, want nil after Release", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiting Acquire never completed")
	}
}

func TestGateHonorsContext(t *testing.T) {
	g := NewGate(1, time.Minute)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := g.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire = %v, want context.DeadlineExceeded", err)
	}
}
