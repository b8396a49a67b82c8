// Package ir defines the value types shared between job loading, execution,
// storage and the harness: Job (what to integrate) and Run (what happened).
//
// It also owns the one serialization used for identity: MarshalCanonical
// produces deterministic JSON (sorted keys, NFC strings, shortest float
// representation), and JobHash derives a content address from it. Two jobs
// that integrate the same function over the same interval with the same
// tolerances hash identically regardless of their names.
package ir
