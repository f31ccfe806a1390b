package quorum

import (
	"context"
	"errors"
	"time"
)

// AcquireRetry blocks until the lock is obtained or ctx is cancelled, calling
// Acquire every interval. Only contention and availability failures are
// retried; argument errors are returned immediately. This is a caller-side
// convenience, the coordinator itself never retries.
func (q *Coordinator) AcquireRetry(ctx context.Context, resource string, ttl, acquireTimeout, interval time.Duration) (*Handle, error) {
	if interval <= 0 {
		return nil, ErrInvalidTimeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		h, err := q.Acquire(ctx, resource, ttl, acquireTimeout)
		if err == nil {
			return h, nil
		}
		if !retryable(err) {
			return nil, err
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrQuorumNotMet) ||
		errors.Is(err, ErrDeadlineExceeded) ||
		errors.Is(err, ErrAllNodesUnreachable)
}
