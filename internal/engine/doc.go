// Package engine executes integration jobs and records their runs.
//
// A job names a catalogue integrand, its parameters, bounds and tolerances.
// The engine validates the job, builds the integrand, integrates it with
// the quad package and, when a recorder is configured, appends the run to
// the history store.
//
// CONCURRENCY:
//
// A single integration is sequential and cannot be interrupted. RunAll
// executes independent jobs on a bounded worker pool; cancellation stops
// new jobs from starting but lets running ones finish. Jobs share nothing
// except the read-only quadrature tables and the recorder, which must be
// safe for concurrent use (store.Store is).
//
// IDENTITY:
//
// Every run gets a fresh ID from the IDGenerator (UUIDv7 by default) and
// carries the content hash of its job, so repeated runs of the same job can
// be grouped in history regardless of the job's name.
package engine
