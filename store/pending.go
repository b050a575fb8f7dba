package store

import (
	"context"
)

// Outcome of LookupUser. When Superseded is true, State is what the request resolved to, but it was never applied to the store.
type Result struct {
	State      LookupState
	Superseded bool

	// lookup generation the request was made under
	generation uint64
}

// Outcome of LoadFollowers or LoadFollowing.
type ListResult struct {
	List       RelationList
	Superseded bool
}

// Handle on an asynchronous store operation, which settles exactly once.
type Pending[T any] struct {
	done   chan struct{}
	result T
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

func (p *Pending[T]) settle(v T) {
	p.result = v
	close(p.done)
}

// Closed once the operation has settled.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Blocks until the operation settles. Only returns an error if ctx ends first.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
