// Package quorum implements distributed mutual exclusion over a fixed set of
// independent storage nodes. A lock is acquired by writing a unique token to
// a strict majority of nodes within a bounded time budget and released by
// deleting the token only where it still matches. Up to floor((N-1)/2)
// unreachable nodes are tolerated.
//
// The algorithm assumes bounded clock drift across nodes relative to the lock
// TTL and does not survive process pauses longer than the remaining validity
// window. Handle validity is advisory: the coordinator never enforces expiry
// locally, the nodes do by expiring tokens autonomously.
package quorum
