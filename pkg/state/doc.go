// Package state implements the protocol's state synchronization scheme.
//
// Each run owns a JSON state value that the backend mutates through
// STATE_SNAPSHOT events (full replacement) and STATE_DELTA events (ordered
// RFC 6902 patch operations). Delta application is all-or-nothing: a delta
// with any failing operation leaves the state exactly as it was and
// surfaces a *PatchError, so a speculatively generated patch can never
// corrupt state.
//
// The package also defines ThreadStore, the narrow interface behind which
// persisted per-thread state lives, with an in-memory implementation that
// serializes writers per store.
package state
