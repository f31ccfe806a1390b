package quorum

import (
	"sync/atomic"
	"time"

	"github.com/mirkobrombin/go-quorum/v1/clock"
)

// Handle represents an acquired lock. It is owned exclusively by the caller
// that acquired it; a Handle is invalidated by Release, by a successful Renew
// (which returns a replacement) or by natural expiry.
type Handle struct {
	resource   string
	token      string
	acquiredAt time.Time
	validity   time.Duration
	clk        clock.Clock
	done       atomic.Bool
}

// Resource returns the resource key the lock protects.
func (h *Handle) Resource() string { return h.resource }

// Token returns the token proving ownership of this acquisition.
func (h *Handle) Token() string { return h.token }

// AcquiredAt returns the instant acquisition started.
func (h *Handle) AcquiredAt() time.Time { return h.acquiredAt }

// Validity returns the validity window granted at acquisition, already
// reduced by the acquisition round trip and the drift margin.
func (h *Handle) Validity() time.Duration { return h.validity }

// Remaining returns how much of the validity window is left. It never goes
// below zero.
func (h *Handle) Remaining() time.Duration {
	left := h.validity - h.clk.Since(h.acquiredAt)
	if left < 0 {
		return 0
	}
	return left
}

// Valid reports whether the handle may still be treated as held. This is
// advisory: nodes expire the token on their own regardless.
func (h *Handle) Valid() bool {
	return !h.done.Load() && h.Remaining() > 0
}
