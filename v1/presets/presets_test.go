package presets

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNewInMemoryStandalone(t *testing.T) {
	q, err := NewInMemoryStandalone(3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	h, err := q.Acquire(ctx, "r", time.Second, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	q.Release(ctx, h)
}

func TestNewRedisQuorum(t *testing.T) {
	addrs := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		mr, err := miniredis.Run()
		if err != nil {
			t.Fatalf("miniredis run: %v", err)
		}
		defer mr.Close()
		addrs = append(addrs, mr.Addr())
	}

	q, err := NewRedisQuorum(RedisQuorumOptions{
		Addrs:          addrs,
		PerCallTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	h, err := q.Acquire(ctx, "r", time.Second, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := q.Acquire(ctx, "r", time.Second, 500*time.Millisecond); err == nil {
		t.Fatal("expected contention while held")
	}
	h2, err := q.Renew(ctx, h, time.Second, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	q.Release(ctx, h2)
	if _, err := q.Acquire(ctx, "r", time.Second, 500*time.Millisecond); err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
}

func TestNewRedisQuorumNoAddrs(t *testing.T) {
	if _, err := NewRedisQuorum(RedisQuorumOptions{}); err == nil {
		t.Fatal("expected error without addresses")
	}
}
