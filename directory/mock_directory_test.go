package directory

import (
	"context"
	"testing"

	"github.com/bluesky-social/profiledir/syntax"

	"github.com/stretchr/testify/assert"
)

func TestMockDirectory(t *testing.T) {
	var err error
	assert := assert.New(t)
	ctx := context.Background()
	d := NewMockDirectory()

	p1 := Profile{
		Handle:      syntax.Handle("OctoCat"),
		AvatarURL:   "https://example.com/octocat.png",
		ProfileURL:  "https://example.com/octocat",
		PublicRepos: 8,
		Followers:   3934,
		Following:   9,
	}
	followers := []RelationEntry{
		{Handle: syntax.Handle("alice"), AvatarURL: "https://example.com/a.png"},
	}

	// first, empty directory
	_, err = d.LookupUser(ctx, syntax.Handle("octocat"))
	assert.Equal(ErrNotFound, err)
	_, err = d.Followers(ctx, syntax.Handle("octocat"))
	assert.Equal(ErrNotFound, err)

	d.Insert(p1)
	d.InsertFollowers(p1.Handle, followers)

	out, err := d.LookupUser(ctx, syntax.Handle("octocat"))
	assert.NoError(err)
	assert.Equal(&p1, out)

	fl, err := d.Followers(ctx, syntax.Handle("OCTOCAT"))
	assert.NoError(err)
	assert.Equal(followers, fl)

	// known user without a following list
	fl, err = d.Following(ctx, syntax.Handle("octocat"))
	assert.NoError(err)
	assert.Empty(fl)

	_, err = d.LookupUser(ctx, syntax.Handle(".."))
	assert.ErrorIs(err, ErrInvalidHandle)
}
