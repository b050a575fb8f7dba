package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bluesky-social/profiledir/directory"
	"github.com/bluesky-social/profiledir/pkg/metrics"
	"github.com/bluesky-social/profiledir/syntax"
)

type listKind int

const (
	listFollowers listKind = iota
	listFollowing
)

func (k listKind) String() string {
	if k == listFollowers {
		return "followers"
	}
	return "following"
}

type listSlot struct {
	gen  uint64
	list RelationList
}

// Coordinates profile lookups and relation list loads against a Directory, and publishes the resulting state.
//
// All methods are safe to call from multiple goroutines. Network calls run on their own goroutines and never hold the store lock.
type Store struct {
	Directory directory.Directory
	Logger    *slog.Logger

	mu      sync.Mutex
	version uint64
	// active request token; bumped by every LookupUser call
	generation uint64
	lookup     LookupState
	lists      [2]listSlot
	subs       map[*Subscription]struct{}
}

func NewStore(dir directory.Directory) *Store {
	return &Store{
		Directory: dir,
		Logger:    slog.Default().With("system", "store"),
		subs:      make(map[*Subscription]struct{}),
	}
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Looks up a profile by handle.
//
// Blank input moves the store to idle, and invalid input to invalid-handle, without any network request. Otherwise the store moves to loading (clearing profile, lists and errors) before this method returns, and the directory request runs in the background. The returned Pending settles once the request resolves; if a newer LookupUser call was made in the meantime, the result is discarded and reported as superseded.
func (s *Store) LookupUser(ctx context.Context, raw string) *Pending[Result] {
	p := newPending[Result]()

	var next LookupState
	var h syntax.Handle
	if syntax.IsBlank(raw) {
		next = LookupState{Status: StatusIdle}
	} else if parsed, err := syntax.ParseHandle(raw); err != nil {
		next = LookupState{Status: StatusInvalidHandle, Message: err.Error(), Kind: directory.KindInvalidHandle}
	} else {
		h = parsed
		next = LookupState{Status: StatusLoading, Handle: h}
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.resetLocked(next)
	s.mu.Unlock()

	if next.Status != StatusLoading {
		lookupOutcomes.WithLabelValues(next.Status.String()).Inc()
		p.settle(Result{State: next, generation: gen})
		return p
	}

	s.logger().Debug("looking up user", "handle", h, "generation", gen)
	go s.runLookup(ctx, gen, h, p)
	return p
}

func (s *Store) runLookup(ctx context.Context, gen uint64, h syntax.Handle, p *Pending[Result]) {
	prof, err := s.Directory.LookupUser(ctx, h)
	next := stateFromResult(h, prof, err)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		staleResults.WithLabelValues("lookup").Inc()
		s.logger().Debug("discarding superseded lookup result", "handle", h, "generation", gen, "status", next.Status)
		p.settle(Result{State: next, Superseded: true, generation: gen})
		return
	}
	s.lookup = next
	s.publishLocked()
	s.mu.Unlock()

	lookupOutcomes.WithLabelValues(next.Status.String()).Inc()
	if next.Status == StatusTransportError {
		s.logger().Warn("user lookup failed", "handle", h, "kind", next.Kind, "err", next.Message)
	}
	p.settle(Result{State: next, generation: gen})
}

// Fetches the followers list for handle, independently of the lookup state.
func (s *Store) LoadFollowers(ctx context.Context, raw string) *Pending[ListResult] {
	return s.loadList(ctx, listFollowers, raw)
}

// Fetches the following list for handle, independently of the lookup state.
func (s *Store) LoadFollowing(ctx context.Context, raw string) *Pending[ListResult] {
	return s.loadList(ctx, listFollowing, raw)
}

// Loads both relation lists concurrently and waits for both to settle. Only returns an error if ctx ends first.
func (s *Store) LoadRelations(ctx context.Context, raw string) (ListResult, ListResult, error) {
	followers := s.LoadFollowers(ctx, raw)
	following := s.LoadFollowing(ctx, raw)

	fr, err := followers.Wait(ctx)
	if err != nil {
		return ListResult{}, ListResult{}, err
	}
	fg, err := following.Wait(ctx)
	if err != nil {
		return ListResult{}, ListResult{}, err
	}
	return fr, fg, nil
}

// Starts loading both lists for the profile found by a LookupUser call. If res was superseded, is not a found result, or another lookup has started since, nothing is fetched and both results report superseded.
func (s *Store) LoadRelationsFor(ctx context.Context, res Result) (followers, following *Pending[ListResult]) {
	followers, following = newPending[ListResult](), newPending[ListResult]()
	if res.Superseded || res.State.Status != StatusFound || res.generation == 0 {
		skipped := ListResult{List: RelationList{Handle: res.State.Handle}, Superseded: true}
		followers.settle(skipped)
		following.settle(skipped)
		return followers, following
	}
	s.startLoad(ctx, listFollowers, res.State.Handle, res.generation, followers)
	s.startLoad(ctx, listFollowing, res.State.Handle, res.generation, following)
	return followers, following
}

func (s *Store) loadList(ctx context.Context, kind listKind, raw string) *Pending[ListResult] {
	p := newPending[ListResult]()
	h, err := syntax.ParseHandle(raw)
	if err != nil {
		s.mu.Lock()
		slot := &s.lists[kind]
		slot.gen++
		slot.list = RelationList{Message: err.Error(), Kind: directory.KindInvalidHandle}
		s.publishLocked()
		list := slot.list.clone()
		s.mu.Unlock()

		listOutcomes.WithLabelValues(kind.String(), metrics.StatusInvalid).Inc()
		p.settle(ListResult{List: list})
		return p
	}
	s.startLoad(ctx, kind, h, 0, p)
	return p
}

// Marks the list as loading and fetches it in the background. A non-zero wantGen only starts the load if it is still the current lookup generation.
func (s *Store) startLoad(ctx context.Context, kind listKind, h syntax.Handle, wantGen uint64, p *Pending[ListResult]) {
	s.mu.Lock()
	if wantGen != 0 && s.generation != wantGen {
		s.mu.Unlock()
		staleResults.WithLabelValues(kind.String()).Inc()
		p.settle(ListResult{List: RelationList{Handle: h}, Superseded: true})
		return
	}

	slot := &s.lists[kind]
	slot.gen++
	lookupGen, listGen := s.generation, slot.gen
	next := RelationList{Handle: h, Loading: true}
	// a reload of the same handle keeps showing the previous entries until replaced
	if slot.list.Handle.Equal(h) {
		next.Entries = slot.list.Entries
		next.Loaded = slot.list.Loaded
	}
	slot.list = next
	s.publishLocked()
	s.mu.Unlock()

	go s.runLoad(ctx, kind, h, lookupGen, listGen, p)
}

func (s *Store) runLoad(ctx context.Context, kind listKind, h syntax.Handle, lookupGen, listGen uint64, p *Pending[ListResult]) {
	var entries []directory.RelationEntry
	var err error
	switch kind {
	case listFollowers:
		entries, err = s.Directory.Followers(ctx, h)
	case listFollowing:
		entries, err = s.Directory.Following(ctx, h)
	}

	next := RelationList{Handle: h}
	if err != nil {
		next.Message = directory.ErrorMessage(err)
		next.Kind = directory.KindOf(err)
	} else {
		if entries == nil {
			entries = []directory.RelationEntry{}
		}
		next.Entries = entries
		next.Loaded = true
	}

	s.mu.Lock()
	slot := &s.lists[kind]
	if s.generation != lookupGen || slot.gen != listGen {
		s.mu.Unlock()
		staleResults.WithLabelValues(kind.String()).Inc()
		s.logger().Debug("discarding superseded list result", "list", kind, "handle", h)
		p.settle(ListResult{List: next, Superseded: true})
		return
	}
	slot.list = next
	s.publishLocked()
	list := slot.list.clone()
	s.mu.Unlock()

	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusError
		if next.Kind == directory.KindNotFound {
			status = metrics.StatusNotFound
		}
		s.logger().Warn("relation list load failed", "list", kind, "handle", h, "kind", next.Kind, "err", next.Message)
	}
	listOutcomes.WithLabelValues(kind.String(), status).Inc()
	p.settle(ListResult{List: list})
}

// Replaces the lookup state and empties both lists. Caller holds s.mu.
func (s *Store) resetLocked(next LookupState) {
	s.lookup = next
	for i := range s.lists {
		s.lists[i].list = RelationList{}
	}
	s.publishLocked()
}

// Caller holds s.mu.
func (s *Store) publishLocked() {
	s.version++
	snap := s.snapshotLocked()
	for sub := range s.subs {
		sub.offer(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:   s.version,
		Lookup:    s.lookup,
		Followers: s.lists[listFollowers].list.clone(),
		Following: s.lists[listFollowing].list.clone(),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) State() LookupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup
}

func (s *Store) Followers() RelationList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[listFollowers].list.clone()
}

func (s *Store) Following() RelationList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[listFollowing].list.clone()
}
