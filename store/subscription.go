package store

import (
	"context"
	"sync"
)

// Stream of store snapshots. C has capacity one and always holds the newest undelivered snapshot: a slow reader skips intermediate versions but never sees them out of order.
type Subscription struct {
	C <-chan Snapshot

	ch    chan Snapshot
	store *Store
	once  sync.Once
}

// Must be called with the store lock held; the store is the only sender.
func (sub *Subscription) offer(snap Snapshot) {
	select {
	case sub.ch <- snap:
		return
	default:
	}
	// drop the older undelivered snapshot, then there is room for this one
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- snap
}

// Stops delivery and closes C. Safe to call more than once.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		defer sub.store.mu.Unlock()
		delete(sub.store.subs, sub)
		close(sub.ch)
	})
}

// Registers a new subscriber. The current snapshot is delivered immediately.
func (s *Store) Subscribe() *Subscription {
	ch := make(chan Snapshot, 1)
	sub := &Subscription{
		C:     ch,
		ch:    ch,
		store: s,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[*Subscription]struct{})
	}
	s.subs[sub] = struct{}{}
	sub.offer(s.snapshotLocked())
	return sub
}

// Calls fn with every snapshot until ctx is done. fn runs on the calling goroutine, never under the store lock, so it may call back into the store.
func (s *Store) Watch(ctx context.Context, fn func(Snapshot)) {
	sub := s.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			fn(snap)
		}
	}
}
