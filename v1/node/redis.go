package node

import (
	"context"
	stdErrors "errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	qerrors "github.com/mirkobrombin/go-quorum/v1/errors"
)

const defaultRedisOpTimeout = 5 * time.Second

var delScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
    return 0
end
`)

// Redis implements Node using a Redis backend. Conditional writes rely on
// SET NX and Lua scripts so each call stays a single atomic round trip.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
}

// RedisOption configures a Redis node.
type RedisOption func(*Redis)

// WithTimeout sets the per-operation timeout for Redis calls.
func WithTimeout(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.timeout = d
	}
}

// NewRedis returns a new Redis node using the provided client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, timeout: defaultRedisOpTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Addr implements Node.Addr.
func (r *Redis) Addr() string {
	return r.client.Options().Addr
}

// TrySet implements Node.TrySet.
func (r *Redis) TrySet(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	ok, err := r.client.SetNX(cctx, key, token, ttl).Result()
	if err != nil {
		return false, mapErr(err)
	}
	return ok, nil
}

// ExtendIf implements Node.ExtendIf.
func (r *Redis) ExtendIf(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res, err := extendScript.Run(cctx, r.client, []string{key}, token, ttl.Milliseconds()).Int()
	if err != nil && err != redis.Nil {
		return false, mapErr(err)
	}
	return res == 1, nil
}

// CompareDelete implements Node.CompareDelete.
func (r *Redis) CompareDelete(ctx context.Context, key, token string) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res, err := delScript.Run(cctx, r.client, []string{key}, token).Int()
	if err != nil && err != redis.Nil {
		return false, mapErr(err)
	}
	return res == 1, nil
}

// Get implements Node.Get.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	v, err := r.client.Get(cctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, mapErr(err)
	}
	return v, true, nil
}

func mapErr(err error) error {
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return qerrors.ErrTimeout
	}
	if stdErrors.Is(err, redis.ErrClosed) {
		return qerrors.ErrConnectionClosed
	}
	return err
}
