package quorum

import (
	"context"
	"errors"
	"log/slog"
	"time"

	guuid "github.com/google/uuid"
	uuid "github.com/hashicorp/go-uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mirkobrombin/go-quorum/v1/clock"
	"github.com/mirkobrombin/go-quorum/v1/metrics"
	"github.com/mirkobrombin/go-quorum/v1/node"
)

var tracer = otel.Tracer("github.com/mirkobrombin/go-quorum/v1/quorum")

var (
	// ErrNoNodes is returned when a coordinator is built without nodes.
	ErrNoNodes = errors.New("quorum: at least one node required")
	// ErrInvalidTTL is returned when a non-positive TTL is provided.
	ErrInvalidTTL = errors.New("quorum: ttl must be positive")
	// ErrInvalidTimeout is returned when a non-positive timeout is provided.
	ErrInvalidTimeout = errors.New("quorum: timeout must be positive")
	// ErrQuorumNotMet is returned when fewer than a majority of nodes voted
	// for this attempt.
	ErrQuorumNotMet = errors.New("quorum: quorum not met")
	// ErrDeadlineExceeded is returned when the attempt ran out of time
	// budget, either against the acquire timeout or the TTL itself.
	ErrDeadlineExceeded = errors.New("quorum: deadline exceeded")
	// ErrAllNodesUnreachable is returned when no node produced a vote.
	ErrAllNodesUnreachable = errors.New("quorum: all nodes unreachable")
	// ErrHandleInvalidated is returned when renewing a handle that was
	// released or superseded by a previous renewal.
	ErrHandleInvalidated = errors.New("quorum: handle released or superseded")
)

const (
	defaultDriftMargin    = 2 * time.Millisecond
	defaultReleaseTimeout = time.Second
)

// Coordinator orchestrates parallel acquisition, renewal and release across a
// fixed set of nodes. It keeps no per-resource state: mutual exclusion comes
// entirely from the atomic conditional writes on the nodes themselves, so a
// single Coordinator is safe for concurrent use.
type Coordinator struct {
	id             string
	nodes          []node.Node
	clk            clock.Clock
	driftMargin    time.Duration
	perNodeTimeout time.Duration
	releaseTimeout time.Duration
	logger         *slog.Logger
	traceEnabled   bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used to measure elapsed acquisition time.
func WithClock(c clock.Clock) Option {
	return func(q *Coordinator) {
		q.clk = c
	}
}

// WithDriftMargin sets the fixed safety margin subtracted from the validity
// window, on top of the proportional 1% of TTL.
func WithDriftMargin(d time.Duration) Option {
	return func(q *Coordinator) {
		q.driftMargin = d
	}
}

// WithPerNodeTimeout caps the deadline of each individual node call. The cap
// is still clamped between acquireTimeout/N and acquireTimeout per attempt.
func WithPerNodeTimeout(d time.Duration) Option {
	return func(q *Coordinator) {
		q.perNodeTimeout = d
	}
}

// WithReleaseTimeout bounds the best-effort release and cleanup fan-out.
func WithReleaseTimeout(d time.Duration) Option {
	return func(q *Coordinator) {
		q.releaseTimeout = d
	}
}

// WithLogger sets the logger for absorbed per-node failures.
func WithLogger(l *slog.Logger) Option {
	return func(q *Coordinator) {
		q.logger = l
	}
}

// WithTracing enables OpenTelemetry spans around lock operations.
func WithTracing() Option {
	return func(q *Coordinator) {
		q.traceEnabled = true
	}
}

// New returns a Coordinator over the given nodes. The node set is fixed for
// the lifetime of the coordinator. An odd size of at least three is required
// for meaningful fault tolerance; a single node is accepted as a degraded
// mode and even sizes are accepted but waste one node.
func New(nodes []node.Node, opts ...Option) (*Coordinator, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, err
	}
	q := &Coordinator{
		id:             id,
		nodes:          append([]node.Node(nil), nodes...),
		clk:            clock.System(),
		driftMargin:    defaultDriftMargin,
		releaseTimeout: defaultReleaseTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.With("coordinator", q.id)
	if len(q.nodes)%2 == 0 {
		q.logger.Warn("quorum: even node count wastes one node", "nodes", len(q.nodes))
	}
	return q, nil
}

// Quorum returns the strict majority threshold for this node set.
func (q *Coordinator) Quorum() int {
	return len(q.nodes)/2 + 1
}

// NodeCount returns the size of the configured node set.
func (q *Coordinator) NodeCount() int {
	return len(q.nodes)
}

// drift returns the margin subtracted from the validity window: 1% of the
// TTL for relative clock drift plus the fixed configured margin.
func (q *Coordinator) drift(ttl time.Duration) time.Duration {
	return ttl/100 + q.driftMargin
}

type vote struct {
	ok      bool
	err     error
	latency time.Duration
}

// fanOut issues op against every node concurrently, each call bounded by the
// per-node deadline, and collects votes until all nodes answered or the
// overall deadline fires. Stragglers are abandoned, not awaited: the buffered
// channel lets their goroutines finish without leaking once the shared
// context is cancelled.
func (q *Coordinator) fanOut(ctx context.Context, overall time.Duration, op func(context.Context, node.Node) (bool, error)) []vote {
	perNode := q.nodeDeadline(overall)
	octx, cancel := context.WithTimeout(ctx, overall)
	defer cancel()

	results := make(chan vote, len(q.nodes))
	for _, n := range q.nodes {
		go func(n node.Node) {
			nctx, ncancel := context.WithTimeout(octx, perNode)
			defer ncancel()
			t0 := q.clk.Now()
			ok, err := op(nctx, n)
			results <- vote{ok: ok, err: err, latency: q.clk.Since(t0)}
		}(n)
	}

	votes := make([]vote, 0, len(q.nodes))
	for range q.nodes {
		select {
		case v := <-results:
			votes = append(votes, v)
		case <-octx.Done():
			return votes
		}
	}
	return votes
}

// nodeDeadline clamps the per-node timeout between overall/N and overall.
func (q *Coordinator) nodeDeadline(overall time.Duration) time.Duration {
	d := q.perNodeTimeout
	floor := overall / time.Duration(len(q.nodes))
	if d <= 0 || d < floor {
		d = floor
	}
	if d > overall {
		d = overall
	}
	return d
}

// Acquire attempts to take the lock for resource, writing a fresh token to
// every node concurrently. It succeeds iff a strict majority of nodes
// accepted the token and enough of the TTL is left after subtracting the
// elapsed round trip and the drift margin. On failure the partial writes are
// cleaned up best-effort before returning.
//
// Acquire never retries; callers decide whether and how to back off.
func (q *Coordinator) Acquire(ctx context.Context, resource string, ttl, acquireTimeout time.Duration) (*Handle, error) {
	if q.traceEnabled {
		var span trace.Span
		ctx, span = tracer.Start(ctx, "Quorum.Acquire",
			trace.WithAttributes(attribute.String("lock.resource", resource)))
		defer span.End()
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	if acquireTimeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	metrics.AcquireCounter.Inc()

	token := guuid.NewString()
	start := q.clk.Now()
	votes := q.fanOut(ctx, acquireTimeout, func(nctx context.Context, n node.Node) (bool, error) {
		return n.TrySet(nctx, resource, token, ttl)
	})
	elapsed := q.clk.Since(start)
	metrics.AcquireLatency.Observe(elapsed.Seconds())

	successes, reachable := q.tally(votes, resource, "acquire")
	validity := ttl - elapsed - q.drift(ttl)
	if successes >= q.Quorum() && validity > 0 {
		return &Handle{
			resource:   resource,
			token:      token,
			acquiredAt: start,
			validity:   validity,
			clk:        q.clk,
		}, nil
	}

	// Undo partial writes on every node so no majority ever sees this token.
	go q.deleteEverywhere(resource, token)
	metrics.AcquireFailureCounter.Inc()
	return nil, q.failureReason(votes, successes, reachable, validity)
}

// Renew extends the TTL of a held lock using compare-based extension on every
// node, under the same quorum and timing rules as Acquire. On success it
// returns a replacement handle and invalidates the old one; on failure the
// old handle must no longer be treated as held.
func (q *Coordinator) Renew(ctx context.Context, h *Handle, ttl, renewTimeout time.Duration) (*Handle, error) {
	if q.traceEnabled {
		var span trace.Span
		ctx, span = tracer.Start(ctx, "Quorum.Renew",
			trace.WithAttributes(attribute.String("lock.resource", h.resource)))
		defer span.End()
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	if renewTimeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	if h.done.Load() {
		return nil, ErrHandleInvalidated
	}
	metrics.RenewCounter.Inc()

	start := q.clk.Now()
	votes := q.fanOut(ctx, renewTimeout, func(nctx context.Context, n node.Node) (bool, error) {
		return n.ExtendIf(nctx, h.resource, h.token, ttl)
	})
	elapsed := q.clk.Since(start)

	successes, reachable := q.tally(votes, h.resource, "renew")
	validity := ttl - elapsed - q.drift(ttl)
	if successes >= q.Quorum() && validity > 0 {
		h.done.Store(true)
		return &Handle{
			resource:   h.resource,
			token:      h.token,
			acquiredAt: start,
			validity:   validity,
			clk:        q.clk,
		}, nil
	}
	return nil, q.failureReason(votes, successes, reachable, validity)
}

// Release deletes the lock token from every node. It is best-effort and
// idempotent: only the rightful token can be deleted, stale tokens on
// unreachable nodes expire on their own, so failures are logged rather than
// returned. Releasing an already released or superseded handle is a no-op.
func (q *Coordinator) Release(ctx context.Context, h *Handle) {
	if h == nil || !h.done.CompareAndSwap(false, true) {
		return
	}
	if q.traceEnabled {
		var span trace.Span
		ctx, span = tracer.Start(ctx, "Quorum.Release",
			trace.WithAttributes(attribute.String("lock.resource", h.resource)))
		defer span.End()
	}
	metrics.ReleaseCounter.Inc()

	rctx, cancel := context.WithTimeout(ctx, q.releaseTimeout)
	defer cancel()
	g := new(errgroup.Group)
	for _, n := range q.nodes {
		n := n
		g.Go(func() error {
			if _, err := n.CompareDelete(rctx, h.resource, h.token); err != nil {
				q.logger.Warn("quorum: release failed on node",
					"node", n.Addr(), "resource", h.resource, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// deleteEverywhere removes a token from all nodes after a failed attempt.
// It runs detached from the caller with its own deadline.
func (q *Coordinator) deleteEverywhere(resource, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), q.releaseTimeout)
	defer cancel()
	g := new(errgroup.Group)
	for _, n := range q.nodes {
		n := n
		g.Go(func() error {
			if _, err := n.CompareDelete(ctx, resource, token); err != nil {
				q.logger.Warn("quorum: cleanup failed on node",
					"node", n.Addr(), "resource", resource, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// tally counts positive votes and reachable nodes, logging absorbed errors.
func (q *Coordinator) tally(votes []vote, resource, op string) (successes, reachable int) {
	for _, v := range votes {
		if v.err != nil {
			metrics.NodeFailureCounter.Inc()
			q.logger.Warn("quorum: node vote failed",
				"op", op, "resource", resource, "error", v.err, "latency", v.latency)
			continue
		}
		reachable++
		if v.ok {
			successes++
		}
	}
	return successes, reachable
}

// failureReason maps a failed attempt to its aggregate error. Missing votes
// mean the overall deadline fired before every node answered.
func (q *Coordinator) failureReason(votes []vote, successes, reachable int, validity time.Duration) error {
	switch {
	case reachable == 0 && len(votes) == len(q.nodes):
		return ErrAllNodesUnreachable
	case successes >= q.Quorum() && validity <= 0:
		return ErrDeadlineExceeded
	case len(votes) < len(q.nodes):
		return ErrDeadlineExceeded
	default:
		return ErrQuorumNotMet
	}
}
