package das

import (
	"context"
	"errors"

	"github.com/availproject/avail-light-go/header"
)

// subscriber feeds new finalized blocks into the sampling process. Announcements at or below the
// last forwarded height are dropped.
type subscriber struct {
	done

	last uint64
}

func newSubscriber() subscriber {
	return subscriber{done: newDone("subscriber")}
}

func (s *subscriber) run(ctx context.Context, sub header.Subscription, emit listenFn) {
	defer s.indicateDone()
	defer sub.Cancel()

	for {
		h, err := sub.NextHeader(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			return
		default:
			log.Errorw("failed to get next header", "err", err)
			continue
		}

		if h.Height() <= s.last {
			log.Debugw("dropping stale header", "height", h.Height(), "last", s.last)
			continue
		}
		s.last = h.Height()
		log.Infow("new block received via subscription", "height", h.Height())

		emit(ctx, h)
	}
}
