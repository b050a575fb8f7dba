package directory

import (
	"context"
	"sync"

	"github.com/bluesky-social/profiledir/syntax"
)

// A fake directory, for use in tests and offline demos
type MockDirectory struct {
	mu *sync.RWMutex

	// all maps are keyed by normalized handle
	Profiles       map[syntax.Handle]Profile
	FollowerLists  map[syntax.Handle][]RelationEntry
	FollowingLists map[syntax.Handle][]RelationEntry
}

var _ Directory = (*MockDirectory)(nil)

func NewMockDirectory() MockDirectory {
	return MockDirectory{
		mu:             &sync.RWMutex{},
		Profiles:       make(map[syntax.Handle]Profile),
		FollowerLists:  make(map[syntax.Handle][]RelationEntry),
		FollowingLists: make(map[syntax.Handle][]RelationEntry),
	}
}

func (d *MockDirectory) Insert(p Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Profiles[p.Handle.Normalize()] = p
}

func (d *MockDirectory) InsertFollowers(h syntax.Handle, entries []RelationEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.FollowerLists[h.Normalize()] = entries
}

func (d *MockDirectory) InsertFollowing(h syntax.Handle, entries []RelationEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.FollowingLists[h.Normalize()] = entries
}

func (d *MockDirectory) LookupUser(ctx context.Context, h syntax.Handle) (*Profile, error) {
	h, err := syntax.ParseHandle(h.String())
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.Profiles[h.Normalize()]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (d *MockDirectory) relations(h syntax.Handle, lists map[syntax.Handle][]RelationEntry) ([]RelationEntry, error) {
	h, err := syntax.ParseHandle(h.String())
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.Profiles[h.Normalize()]; !ok {
		return nil, ErrNotFound
	}
	out := make([]RelationEntry, len(lists[h.Normalize()]))
	copy(out, lists[h.Normalize()])
	return out, nil
}

func (d *MockDirectory) Followers(ctx context.Context, h syntax.Handle) ([]RelationEntry, error) {
	return d.relations(h, d.FollowerLists)
}

func (d *MockDirectory) Following(ctx context.Context, h syntax.Handle) ([]RelationEntry, error) {
	return d.relations(h, d.FollowingLists)
}
