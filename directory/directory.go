package directory

import (
	"context"

	"github.com/bluesky-social/profiledir/syntax"
)

// Ergonomic interface for profile lookups by handle.
//
// Some example implementations of this interface could be:
//   - API client, which makes one HTTP request per call (APIDirectory)
//   - in-memory fixture for tests and demos (MockDirectory)
type Directory interface {
	LookupUser(ctx context.Context, handle syntax.Handle) (*Profile, error)
	Followers(ctx context.Context, handle syntax.Handle) ([]RelationEntry, error)
	Following(ctx context.Context, handle syntax.Handle) ([]RelationEntry, error)
}

// Public profile, as returned by a user lookup. Replaced wholesale on every lookup, never patched.
type Profile struct {
	// these fields are required and non-nullable
	Handle      syntax.Handle `json:"login"`
	AvatarURL   string        `json:"avatar_url"`
	ProfileURL  string        `json:"html_url"`
	PublicRepos int64         `json:"public_repos"`
	Followers   int64         `json:"followers"`
	Following   int64         `json:"following"`

	// these fields are nullable
	Name     *string `json:"name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Location *string `json:"location,omitempty"`
}

// One row of a followers or following list. Entries have no identity beyond their fields.
type RelationEntry struct {
	Handle    syntax.Handle `json:"login"`
	AvatarURL string        `json:"avatar_url"`
}
