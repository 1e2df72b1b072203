package sandbox

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAcquireRelease(t *testing.T) {
	l := NewLimiter(2)

	ctx := context.Background()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	stats := l.Stats()
	if stats["in_use"] != 2 || stats["available"] != 0 {
		t.Errorf("Stats() = %v, want 2 in use", stats)
	}

	l.Release()
	l.Release()

	stats = l.Stats()
	if stats["available"] != 2 {
		t.Errorf("Stats() = %v, want 2 available", stats)
	}
}

func TestLimiterSaturationBlocks(t *testing.T) {
	l := NewLimiter(1)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx); err != context.DeadlineExceeded {
		t.Errorf("Acquire() on saturated limiter = %v, want deadline exceeded", err)
	}

	l.Release()
	if err := l.Acquire(context.Background()); err != nil {
		t.Errorf("Acquire() after release error = %v", err)
	}
}

func TestLimiterClosed(t *testing.T) {
	l := NewLimiter(1)
	l.Close()

	if err := l.Acquire(context.Background()); err != ErrLimiterClosed {
		t.Errorf("Acquire() on closed limiter = %v, want ErrLimiterClosed", err)
	}
}

func TestLimiterDefaultSize(t *testing.T) {
	l := NewLimiter(0)
	if l.Stats()["size"] != 4 {
		t.Errorf("Stats() size = %v, want default 4", l.Stats()["size"])
	}
}
