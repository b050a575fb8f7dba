package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bluesky-social/profiledir/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestSubscribeInitialSnapshot(t *testing.T) {
	assert := assert.New(t)

	var s Store
	s.Directory = newGatedDirectory()
	sub := s.Subscribe()
	defer sub.Close()

	snap := nextSnapshot(t, sub)
	assert.Equal(uint64(0), snap.Version)
	assert.Equal(StatusIdle, snap.Lookup.Status)
}

func TestSubscribeSeesLoadingBeforeFound(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := testContext(t)
	dir := newGatedDirectory()
	s := NewStore(dir)

	sub := s.Subscribe()
	defer sub.Close()
	nextSnapshot(t, sub)

	release := dir.hold("user:octocat")
	p := s.LookupUser(ctx, "octocat")

	loading := nextSnapshot(t, sub)
	assert.Equal(StatusLoading, loading.Lookup.Status)
	assert.Equal(syntax.Handle("octocat"), loading.Lookup.Handle)

	release()
	_, err := p.Wait(ctx)
	require.NoError(err)

	found := nextSnapshot(t, sub)
	assert.Equal(StatusFound, found.Lookup.Status)
	assert.Greater(found.Version, loading.Version)
	assert.Equal(s.Snapshot(), found)
}

func TestSubscribeCoalesces(t *testing.T) {
	assert := assert.New(t)
	ctx := testContext(t)
	s := NewStore(newGatedDirectory())

	sub := s.Subscribe()
	defer sub.Close()

	for _, raw := range []string{"..", "", ".", ""} {
		_, err := s.LookupUser(ctx, raw).Wait(ctx)
		assert.NoError(err)
	}

	// slow reader only gets the newest state
	snap := nextSnapshot(t, sub)
	assert.Equal(s.Snapshot(), snap)
	assert.Equal(uint64(4), snap.Version)
	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

func TestSubscriptionVersionsIncrease(t *testing.T) {
	assert := assert.New(t)
	ctx := testContext(t)
	dir := newGatedDirectory()
	s := NewStore(dir)

	sub := s.Subscribe()

	var mu sync.Mutex
	var versions []uint64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range sub.C {
			mu.Lock()
			versions = append(versions, snap.Version)
			mu.Unlock()
		}
	}()

	for _, raw := range []string{"octocat", "alice", "ghost", "bob"} {
		_, err := s.LookupUser(ctx, raw).Wait(ctx)
		assert.NoError(err)
		_, _, err = s.LoadRelations(ctx, raw)
		assert.NoError(err)
	}
	sub.Close()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(versions)
	for i := 1; i < len(versions); i++ {
		assert.Greater(versions[i], versions[i-1])
	}
}

func TestSubscriptionClose(t *testing.T) {
	assert := assert.New(t)
	ctx := testContext(t)
	s := NewStore(newGatedDirectory())

	sub := s.Subscribe()
	sub.Close()
	sub.Close()

	// drains the initial snapshot, then observes the close
	for range sub.C {
	}
	_, ok := <-sub.C
	assert.False(ok)

	// publishing after close must not panic
	_, err := s.LookupUser(ctx, "octocat").Wait(ctx)
	assert.NoError(err)
	assert.Equal(StatusFound, s.State().Status)
}

func TestWatch(t *testing.T) {
	assert := assert.New(t)
	ctx := testContext(t)
	s := NewStore(newGatedDirectory())

	watchCtx, cancel := context.WithCancel(ctx)
	found := make(chan Snapshot, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Watch(watchCtx, func(snap Snapshot) {
			// callbacks may read back from the store
			_ = s.State()
			if snap.Lookup.Status == StatusFound {
				select {
				case found <- snap:
				default:
				}
			}
		})
	}()

	_, err := s.LookupUser(ctx, "octocat").Wait(ctx)
	assert.NoError(err)

	select {
	case snap := <-found:
		assert.Equal(syntax.Handle("octocat"), snap.Lookup.Profile.Handle)
	case <-time.After(5 * time.Second):
		t.Fatal("watch never saw the found state")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
