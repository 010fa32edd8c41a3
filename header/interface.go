package header

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the requested header is unknown to the source.
var ErrNotFound = errors.New("header: not found")

// Getter fetches finalized headers.
type Getter interface {
	// Head returns the latest finalized header.
	Head(ctx context.Context) (*BlockHeader, error)
	// GetByHeight returns the header of the given block number.
	GetByHeight(ctx context.Context, height uint64) (*BlockHeader, error)
}

// Subscriber produces subscriptions to newly finalized headers.
type Subscriber interface {
	Subscribe() (Subscription, error)
}

// Subscription delivers finalized headers in ascending order.
type Subscription interface {
	// NextHeader blocks until the next header arrives or ctx is done.
	NextHeader(ctx context.Context) (*BlockHeader, error)
	// Cancel stops the subscription.
	Cancel()
}
