/*
Package store holds the observable state of a profile lookup: the current [LookupState] plus independent followers and following [RelationList] side-channels.

A [Store] is driven by a View Adapter (terminal, web page, anything) which triggers [Store.LookupUser], [Store.LoadFollowers] and [Store.LoadFollowing], reads state through [Store.Snapshot], and re-renders whenever a [Subscription] delivers a new snapshot.

Ordering rules:

  - starting a lookup clears the previous profile, both lists and any error synchronously, before the network request is issued, so observers never see a previous handle's data next to a new lookup.
  - every lookup gets a new generation number (the active request token). A result is applied only if its generation is still current; superseded results are discarded. There is no cancel API: supersession is the only way an in-flight request loses its effect on state.
  - list loads capture both the lookup generation and a per-list generation. They are discarded if a newer lookup started, or a newer load of the same list was issued, before they resolved.

Failures never escape as errors or panics; they are represented as state, with the distinction between "not found", "invalid handle" and retryable failures preserved.
*/
package store
