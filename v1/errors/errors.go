// Package errors defines sentinel errors shared by the node clients.
package errors

import "errors"

var (
	// ErrTimeout reports that a single node call exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrConnectionClosed reports that the underlying connection is gone.
	ErrConnectionClosed = errors.New("connection closed")
)
