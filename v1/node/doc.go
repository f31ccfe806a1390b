// Package node wraps a single key-value storage node holding lock tokens.
// Every operation is a single atomic round trip with a bounded deadline, so
// the quorum coordinator can treat each node as an independent vote. Redis
// and in-memory implementations are provided.
package node
