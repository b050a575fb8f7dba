package store

import (
	"fmt"

	"github.com/bluesky-social/profiledir/directory"
	"github.com/bluesky-social/profiledir/syntax"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusFound
	StatusNotFound
	StatusInvalidHandle
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not-found"
	case StatusInvalidHandle:
		return "invalid-handle"
	case StatusTransportError:
		return "transport-error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// True for the states a lookup settles in: found, not-found, invalid-handle and transport-error.
func (s Status) Terminal() bool {
	switch s {
	case StatusFound, StatusNotFound, StatusInvalidHandle, StatusTransportError:
		return true
	}
	return false
}

// Exactly one Status holds at a time. Fields other than Status are only meaningful for some variants.
type LookupState struct {
	Status Status
	// handle being (or last) looked up; empty when idle or invalid
	Handle syntax.Handle
	// set only when Status is StatusFound
	Profile *directory.Profile
	// human-readable failure cause, for StatusTransportError and StatusInvalidHandle
	Message string
	// failure classification; KindHTTPStatus, KindTransport or KindDecode for StatusTransportError
	Kind directory.ErrorKind
}

// Retryable failures: anything other than not-found or an invalid handle.
func (ls LookupState) Retryable() bool {
	return ls.Status == StatusTransportError
}

// One followers or following list for a specific handle.
type RelationList struct {
	Handle  syntax.Handle
	Loading bool
	// true once a fetch for Handle completed successfully
	Loaded  bool
	Entries []directory.RelationEntry
	Message string
	Kind    directory.ErrorKind
}

func (rl RelationList) Failed() bool {
	return rl.Message != ""
}

func (rl RelationList) clone() RelationList {
	if rl.Entries != nil {
		entries := make([]directory.RelationEntry, len(rl.Entries))
		copy(entries, rl.Entries)
		rl.Entries = entries
	}
	return rl
}

// Point-in-time copy of all store state. Version increases by one on every change.
type Snapshot struct {
	Version   uint64
	Lookup    LookupState
	Followers RelationList
	Following RelationList
}

func stateFromResult(h syntax.Handle, p *directory.Profile, err error) LookupState {
	if err == nil && p == nil {
		err = &directory.DecodeError{Err: fmt.Errorf("directory returned no profile for %s", h)}
	}
	if err == nil {
		return LookupState{Status: StatusFound, Handle: h, Profile: p}
	}

	kind := directory.KindOf(err)
	switch kind {
	case directory.KindNotFound:
		return LookupState{Status: StatusNotFound, Handle: h, Kind: kind}
	case directory.KindInvalidHandle:
		return LookupState{Status: StatusInvalidHandle, Handle: h, Message: directory.ErrorMessage(err), Kind: kind}
	default:
		return LookupState{Status: StatusTransportError, Handle: h, Message: directory.ErrorMessage(err), Kind: kind}
	}
}
