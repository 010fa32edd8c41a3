package headertest

import (
	"context"
	"sync"

	"github.com/availproject/avail-light-go/header"
)

// Store is an in-memory header source. It serves headers by height and announces appended
// headers to every active subscription.
type Store struct {
	mu      sync.Mutex
	headers map[uint64]*header.BlockHeader
	head    *header.BlockHeader
	subs    map[*subscription]struct{}
}

var (
	_ header.Getter     = (*Store)(nil)
	_ header.Subscriber = (*Store)(nil)
)

// NewStore creates a Store pre-populated with the given headers.
func NewStore(headers ...*header.BlockHeader) *Store {
	s := &Store{
		headers: make(map[uint64]*header.BlockHeader),
		subs:    make(map[*subscription]struct{}),
	}
	for _, h := range headers {
		s.put(h)
	}
	return s
}

// Append stores the header and announces it to subscribers.
func (s *Store) Append(h *header.BlockHeader) {
	s.mu.Lock()
	s.put(h)
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.headers <- h:
		case <-sub.done:
		}
	}
}

func (s *Store) put(h *header.BlockHeader) {
	s.headers[h.Height()] = h
	if s.head == nil || h.Number > s.head.Number {
		s.head = h
	}
}

func (s *Store) Head(context.Context) (*header.BlockHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head == nil {
		return nil, header.ErrNotFound
	}
	return s.head, nil
}

func (s *Store) GetByHeight(ctx context.Context, height uint64) (*header.BlockHeader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.headers[height]
	if !ok {
		return nil, header.ErrNotFound
	}
	return h, nil
}

func (s *Store) Subscribe() (header.Subscription, error) {
	sub := &subscription{
		store:   s,
		headers: make(chan *header.BlockHeader, 16),
		done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub, nil
}

type subscription struct {
	store   *Store
	headers chan *header.BlockHeader
	done    chan struct{}
	once    sync.Once
}

func (sub *subscription) NextHeader(ctx context.Context) (*header.BlockHeader, error) {
	select {
	case h := <-sub.headers:
		return h, nil
	case <-sub.done:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (sub *subscription) Cancel() {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		delete(sub.store.subs, sub)
		sub.store.mu.Unlock()
		close(sub.done)
	})
}
