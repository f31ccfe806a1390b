package node

import (
	"context"
	"sync"
	"time"

	"github.com/mirkobrombin/go-quorum/v1/clock"
)

type memItem struct {
	token     string
	expiresAt time.Time
}

// InMemory implements Node using local memory. Expiry is evaluated lazily
// against the configured clock, which makes it suitable both as a
// single-process degraded mode and as a deterministic test node.
type InMemory struct {
	mu    sync.Mutex
	items map[string]memItem
	clk   clock.Clock
	name  string
}

// InMemoryOption configures an InMemory node.
type InMemoryOption func(*InMemory)

// WithClock sets the clock used to evaluate expiry.
func WithClock(c clock.Clock) InMemoryOption {
	return func(n *InMemory) {
		n.clk = c
	}
}

// WithName sets the identifier returned by Addr.
func WithName(name string) InMemoryOption {
	return func(n *InMemory) {
		n.name = name
	}
}

// NewInMemory returns a new in-memory node.
func NewInMemory(opts ...InMemoryOption) *InMemory {
	n := &InMemory{
		items: make(map[string]memItem),
		clk:   clock.System(),
		name:  "in-memory",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Addr implements Node.Addr.
func (n *InMemory) Addr() string {
	return n.name
}

// expired reports whether it is past its expiry. Callers hold n.mu.
func (n *InMemory) expired(it memItem) bool {
	return !it.expiresAt.IsZero() && !n.clk.Now().Before(it.expiresAt)
}

// TrySet implements Node.TrySet.
func (n *InMemory) TrySet(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if it, ok := n.items[key]; ok && !n.expired(it) {
		return false, nil
	}
	n.items[key] = memItem{token: token, expiresAt: n.clk.Now().Add(ttl)}
	return true, nil
}

// ExtendIf implements Node.ExtendIf.
func (n *InMemory) ExtendIf(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	it, ok := n.items[key]
	if !ok || n.expired(it) || it.token != token {
		return false, nil
	}
	it.expiresAt = n.clk.Now().Add(ttl)
	n.items[key] = it
	return true, nil
}

// CompareDelete implements Node.CompareDelete.
func (n *InMemory) CompareDelete(ctx context.Context, key, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	it, ok := n.items[key]
	if !ok || n.expired(it) || it.token != token {
		return false, nil
	}
	delete(n.items, key)
	return true, nil
}

// Get implements Node.Get.
func (n *InMemory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	it, ok := n.items[key]
	if !ok || n.expired(it) {
		return "", false, nil
	}
	return it.token, true, nil
}
