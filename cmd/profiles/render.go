package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bluesky-social/profiledir/directory"
	"github.com/bluesky-social/profiledir/store"
)

func renderSnapshot(w io.Writer, snap store.Snapshot) {
	renderLookup(w, snap.Lookup)
	if snap.Lookup.Status != store.StatusFound {
		return
	}
	renderList(w, "followers", snap.Followers)
	renderList(w, "following", snap.Following)
}

func renderLookup(w io.Writer, ls store.LookupState) {
	switch ls.Status {
	case store.StatusIdle:
		fmt.Fprintln(w, "enter a handle to look up")
	case store.StatusLoading:
		fmt.Fprintf(w, "looking up %s...\n", ls.Handle)
	case store.StatusFound:
		renderProfile(w, ls.Profile)
	case store.StatusNotFound:
		fmt.Fprintf(w, "no such user: %s\n", ls.Handle)
	case store.StatusInvalidHandle:
		fmt.Fprintf(w, "invalid handle: %s\n", ls.Message)
	case store.StatusTransportError:
		fmt.Fprintf(w, "lookup failed: %s\n", ls.Message)
		fmt.Fprintln(w, "try again (in watch mode, enter /retry)")
	}
}

func renderProfile(w io.Writer, p *directory.Profile) {
	if p == nil {
		return
	}
	if p.Name != nil && *p.Name != "" {
		fmt.Fprintf(w, "%s (@%s)\n", *p.Name, p.Handle)
	} else {
		fmt.Fprintf(w, "@%s\n", p.Handle)
	}
	if p.Bio != nil && *p.Bio != "" {
		fmt.Fprintf(w, "  %s\n", *p.Bio)
	}
	if p.Location != nil && *p.Location != "" {
		fmt.Fprintf(w, "  location: %s\n", *p.Location)
	}
	fmt.Fprintf(w, "  repos: %d  followers: %d  following: %d\n", p.PublicRepos, p.Followers, p.Following)
	fmt.Fprintf(w, "  profile: %s\n", p.ProfileURL)
	fmt.Fprintf(w, "  avatar: %s\n", p.AvatarURL)
}

func renderList(w io.Writer, title string, rl store.RelationList) {
	switch {
	case rl.Loading:
		fmt.Fprintf(w, "%s: loading...\n", title)
	case rl.Failed():
		fmt.Fprintf(w, "%s: failed: %s\n", title, rl.Message)
	case !rl.Loaded:
		return
	case len(rl.Entries) == 0:
		fmt.Fprintf(w, "%s: none\n", title)
	default:
		fmt.Fprintf(w, "%s (%d):\n", title, len(rl.Entries))
		for _, e := range rl.Entries {
			fmt.Fprintf(w, "  @%s\t%s\n", e.Handle, e.AvatarURL)
		}
	}
}

type lookupJSON struct {
	Status  string             `json:"status"`
	Handle  string             `json:"handle,omitempty"`
	Profile *directory.Profile `json:"profile,omitempty"`
	Error   string             `json:"error,omitempty"`
	Kind    string             `json:"errorKind,omitempty"`
}

type listJSON struct {
	Handle  string                    `json:"handle,omitempty"`
	Loaded  bool                      `json:"loaded"`
	Entries []directory.RelationEntry `json:"entries"`
	Error   string                    `json:"error,omitempty"`
	Kind    string                    `json:"errorKind,omitempty"`
}

func kindJSON(k directory.ErrorKind) string {
	if k == directory.KindNone {
		return ""
	}
	return k.String()
}

func toLookupJSON(ls store.LookupState) lookupJSON {
	return lookupJSON{
		Status:  ls.Status.String(),
		Handle:  ls.Handle.String(),
		Profile: ls.Profile,
		Error:   ls.Message,
		Kind:    kindJSON(ls.Kind),
	}
}

func toListJSON(rl store.RelationList) listJSON {
	entries := rl.Entries
	if entries == nil {
		entries = []directory.RelationEntry{}
	}
	return listJSON{
		Handle:  rl.Handle.String(),
		Loaded:  rl.Loaded,
		Entries: entries,
		Error:   rl.Message,
		Kind:    kindJSON(rl.Kind),
	}
}

// Accepts a store.Snapshot or store.RelationList.
func renderJSON(w io.Writer, v any) error {
	var out any
	switch v := v.(type) {
	case store.Snapshot:
		body := map[string]any{
			"lookup": toLookupJSON(v.Lookup),
		}
		if v.Lookup.Status == store.StatusFound {
			body["followers"] = toListJSON(v.Followers)
			body["following"] = toListJSON(v.Following)
		}
		out = body
	case store.RelationList:
		out = toListJSON(v)
	default:
		return fmt.Errorf("unsupported value for JSON output: %T", v)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
