package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/mirkobrombin/go-quorum/v1/presets"
)

func main() {
	nodeCount := flag.Int("nodes", 5, "Number of Redis nodes to spin up")
	ttl := flag.Duration("ttl", 2*time.Second, "Lock TTL")
	timeout := flag.Duration("timeout", 500*time.Millisecond, "Acquire timeout")
	flag.Parse()

	servers := make([]*miniredis.Miniredis, 0, *nodeCount)
	addrs := make([]string, 0, *nodeCount)
	for i := 0; i < *nodeCount; i++ {
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatalf("start node: %v", err)
		}
		defer mr.Close()
		servers = append(servers, mr)
		addrs = append(addrs, mr.Addr())
	}
	log.Printf("cluster up: %d nodes %v", *nodeCount, addrs)

	q, err := presets.NewRedisQuorum(presets.RedisQuorumOptions{Addrs: addrs})
	if err != nil {
		log.Fatalf("coordinator: %v", err)
	}
	ctx := context.Background()

	h, err := q.Acquire(ctx, "smoke", *ttl, *timeout)
	if err != nil {
		log.Fatalf("acquire: %v", err)
	}
	log.Printf("acquired, validity %v", h.Remaining())

	if _, err := q.Acquire(ctx, "smoke", *ttl, *timeout); err != nil {
		log.Printf("contender correctly rejected: %v", err)
	}

	if h, err = q.Renew(ctx, h, *ttl, *timeout); err != nil {
		log.Fatalf("renew: %v", err)
	}
	log.Printf("renewed, validity %v", h.Remaining())

	// Kill a minority and prove the lock still releases and reacquires.
	down := (*nodeCount - 1) / 2
	for i := 0; i < down; i++ {
		servers[i].Close()
	}
	log.Printf("killed %d nodes", down)

	q.Release(ctx, h)
	h2, err := q.Acquire(ctx, "smoke", *ttl, *timeout)
	if err != nil {
		log.Fatalf("acquire with minority down: %v", err)
	}
	log.Printf("reacquired with %d/%d nodes alive, validity %v", *nodeCount-down, *nodeCount, h2.Remaining())
	q.Release(ctx, h2)
	log.Print("smoke test passed")
}
