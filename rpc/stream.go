package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/availproject/avail-light-go/header"
)

var _ header.Subscriber = (*HeaderStream)(nil)

// HeaderStream turns polling of the finalized head into a subscription. Every subscription
// starts at the head known on its first poll and emits every following header in order.
type HeaderStream struct {
	getter   header.Getter
	interval time.Duration
}

// NewHeaderStream creates a HeaderStream polling the getter every interval.
func NewHeaderStream(getter header.Getter, interval time.Duration) *HeaderStream {
	return &HeaderStream{
		getter:   getter,
		interval: interval,
	}
}

// Subscribe starts polling for a new subscription.
func (hs *HeaderStream) Subscribe() (header.Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		headers: make(chan *header.BlockHeader),
		ctx:     ctx,
		cancel:  cancel,
	}
	sub.wg.Add(1)
	go hs.poll(ctx, sub)
	return sub, nil
}

func (hs *HeaderStream) poll(ctx context.Context, sub *subscription) {
	defer sub.wg.Done()
	ticker := time.NewTicker(hs.interval)
	defer ticker.Stop()

	var next uint64
	for {
		head, err := hs.getter.Head(ctx)
		switch {
		case err == nil:
			if next == 0 {
				next = head.Height()
			}
			next = hs.emitUpTo(ctx, sub, next, head)
		case ctx.Err() != nil:
			return
		default:
			log.Warnw("polling finalized head", "err", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// emitUpTo sends headers from next up to the head and returns the height to continue from.
func (hs *HeaderStream) emitUpTo(ctx context.Context, sub *subscription, next uint64, head *header.BlockHeader) uint64 {
	for ; next <= head.Height(); next++ {
		h := head
		if next != head.Height() {
			var err error
			h, err = hs.getter.GetByHeight(ctx, next)
			if err != nil {
				if ctx.Err() == nil {
					log.Warnw("getting header", "height", next, "err", err)
				}
				return next
			}
		}

		select {
		case sub.headers <- h:
		case <-ctx.Done():
			return next
		}
	}
	return next
}

type subscription struct {
	headers chan *header.BlockHeader
	// ctx is done once the subscription is canceled
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (sub *subscription) NextHeader(ctx context.Context) (*header.BlockHeader, error) {
	select {
	case h := <-sub.headers:
		return h, nil
	case <-sub.ctx.Done():
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops polling and waits for the poller to exit.
func (sub *subscription) Cancel() {
	sub.cancel()
	sub.wg.Wait()
}
