package node

import (
	"context"
	"time"
)

// Node is a single storage node participating in quorum locking.
//
// Implementations must make each operation atomic on the node itself; the
// coordinator never issues multi-step transactions.
type Node interface {
	// TrySet stores token under key with expiry ttl only if the key is
	// currently absent or already expired. It returns true iff this call
	// performed the write. An existing unexpired token is never overwritten.
	TrySet(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	// ExtendIf resets the expiry of key to ttl only if its current value
	// still equals token. It returns true iff the expiry was extended.
	ExtendIf(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	// CompareDelete removes key only if its current value equals token.
	// It returns true iff the deletion occurred.
	CompareDelete(ctx context.Context, key, token string) (bool, error)
	// Get returns the value stored under key. The boolean reports presence.
	// Best-effort point read for diagnostics, never an acquisition input.
	Get(ctx context.Context, key string) (string, bool, error)
	// Addr identifies the node in logs and metrics.
	Addr() string
}
