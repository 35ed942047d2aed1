// Package snapshot owns the per-set card documents and the change detection
// that decides what a run can skip.
//
// Each (set, language) pair persists one XML document under the snapshot
// directory, with the previous run's copy kept beside it with an .old suffix.
// Fingerprints are sha256 hashes over a canonical serialization: whitespace-only
// text removed, attributes in sorted order. Equal set fingerprints mark the
// whole pair skippable; equal per-card fingerprints mark individual cards
// skippable. Skip flags are advisory and only ever derived from content
// hashes, never from file timestamps.
package snapshot
