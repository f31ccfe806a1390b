package quorum

import (
	"context"
	"testing"
	"time"
)

func TestAcquireRetryWaitsForRelease(t *testing.T) {
	q, err := New(memNodes(3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	h, err := q.Acquire(ctx, "r", time.Second, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	go func() {
		time.Sleep(100 * time.Millisecond)
		q.Release(context.Background(), h)
	}()

	h2, err := q.AcquireRetry(ctx, "r", time.Second, 200*time.Millisecond, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire retry: %v", err)
	}
	q.Release(ctx, h2)
}

func TestAcquireRetryHonoursContext(t *testing.T) {
	q, err := New(memNodes(3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	h, err := q.Acquire(ctx, "r", time.Minute, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer q.Release(ctx, h)

	cctx, cancel := context.WithTimeout(ctx, 60*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := q.AcquireRetry(cctx, "r", time.Minute, 200*time.Millisecond, 10*time.Millisecond); err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatal("retry did not respect context deadline")
	}
}

func TestAcquireRetryRejectsBadArguments(t *testing.T) {
	q, err := New(memNodes(3))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := q.AcquireRetry(context.Background(), "r", time.Second, 200*time.Millisecond, 0); err != ErrInvalidTimeout {
		t.Fatalf("expected invalid timeout, got %v", err)
	}
	if _, err := q.AcquireRetry(context.Background(), "r", 0, 200*time.Millisecond, 10*time.Millisecond); err != ErrInvalidTTL {
		t.Fatalf("expected invalid ttl, got %v", err)
	}
}
