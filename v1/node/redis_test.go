package node

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newRedisNode(t *testing.T) (*Redis, *miniredis.Miniredis, context.Context) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewRedis(client), mr, context.Background()
}

func TestRedisTrySetConflict(t *testing.T) {
	n, _, ctx := newRedisNode(t)
	ok, err := n.TrySet(ctx, "k", "a", time.Second)
	if err != nil || !ok {
		t.Fatalf("tryset: %v ok %v", err, ok)
	}
	if ok, err := n.TrySet(ctx, "k", "b", time.Second); err != nil || ok {
		t.Fatalf("expected conflict, ok %v err %v", ok, err)
	}
	if v, ok, err := n.Get(ctx, "k"); err != nil || !ok || v != "a" {
		t.Fatalf("get: %q ok %v err %v", v, ok, err)
	}
}

func TestRedisTrySetAfterExpiry(t *testing.T) {
	n, mr, ctx := newRedisNode(t)
	if ok, _ := n.TrySet(ctx, "k", "a", 50*time.Millisecond); !ok {
		t.Fatal("initial tryset failed")
	}
	mr.FastForward(60 * time.Millisecond)
	if ok, err := n.TrySet(ctx, "k", "b", time.Second); err != nil || !ok {
		t.Fatalf("expected write over expired token, ok %v err %v", ok, err)
	}
}

func TestRedisCompareDelete(t *testing.T) {
	n, _, ctx := newRedisNode(t)
	_, _ = n.TrySet(ctx, "k", "a", time.Second)
	if ok, err := n.CompareDelete(ctx, "k", "b"); err != nil || ok {
		t.Fatalf("delete with wrong token must be a no-op, ok %v err %v", ok, err)
	}
	if ok, err := n.CompareDelete(ctx, "k", "a"); err != nil || !ok {
		t.Fatalf("delete with right token: ok %v err %v", ok, err)
	}
	if _, ok, _ := n.Get(ctx, "k"); ok {
		t.Fatal("key should be gone")
	}
}

func TestRedisExtendIf(t *testing.T) {
	n, mr, ctx := newRedisNode(t)
	_, _ = n.TrySet(ctx, "k", "a", 100*time.Millisecond)
	if ok, err := n.ExtendIf(ctx, "k", "b", time.Second); err != nil || ok {
		t.Fatalf("extend with wrong token must fail, ok %v err %v", ok, err)
	}
	if ok, err := n.ExtendIf(ctx, "k", "a", time.Second); err != nil || !ok {
		t.Fatalf("extend: ok %v err %v", ok, err)
	}
	mr.FastForward(500 * time.Millisecond)
	if _, ok, _ := n.Get(ctx, "k"); !ok {
		t.Fatal("token should survive past original ttl after extend")
	}
	mr.FastForward(600 * time.Millisecond)
	if ok, _ := n.ExtendIf(ctx, "k", "a", time.Second); ok {
		t.Fatal("extending an expired token must fail")
	}
}

func TestRedisUnreachableNode(t *testing.T) {
	n, mr, ctx := newRedisNode(t)
	mr.Close()
	if _, err := n.TrySet(ctx, "k", "a", time.Second); err == nil {
		t.Fatal("expected error from closed node")
	}
	if _, err := n.CompareDelete(ctx, "k", "a"); err == nil {
		t.Fatal("expected error from closed node")
	}
}
