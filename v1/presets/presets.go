// Package presets offers ready-made coordinator configurations for common
// deployments.
package presets

import (
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/go-quorum/v1/node"
	"github.com/mirkobrombin/go-quorum/v1/quorum"
)

// RedisQuorumOptions configures the connection to a set of independent Redis
// nodes. The nodes must not replicate each other: the algorithm depends on
// their failure independence.
type RedisQuorumOptions struct {
	Addrs          []string
	Password       string
	DB             int
	PerCallTimeout time.Duration
}

// NewRedisQuorum creates a Coordinator over one Redis node per address.
// Five independent masters is the usual deployment; three is the minimum for
// tolerating a single failure.
func NewRedisQuorum(opts RedisQuorumOptions, copts ...quorum.Option) (*quorum.Coordinator, error) {
	nodes := make([]node.Node, 0, len(opts.Addrs))
	for _, addr := range opts.Addrs {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
		var nopts []node.RedisOption
		if opts.PerCallTimeout > 0 {
			nopts = append(nopts, node.WithTimeout(opts.PerCallTimeout))
		}
		nodes = append(nodes, node.NewRedis(client, nopts...))
	}
	return quorum.New(nodes, copts...)
}

// NewInMemoryStandalone creates a Coordinator over n in-memory nodes with no
// external dependencies. With n=1 this degrades to single-process locking,
// useful for local development and tests.
func NewInMemoryStandalone(n int, copts ...quorum.Option) (*quorum.Coordinator, error) {
	nodes := make([]node.Node, n)
	for i := range nodes {
		nodes[i] = node.NewInMemory()
	}
	return quorum.New(nodes, copts...)
}
