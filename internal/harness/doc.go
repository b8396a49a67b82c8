// Package harness runs integration scenarios as executable contract tests.
//
// A scenario is a job (integrand, params, bounds, tolerances) plus
// expectations about the result. The harness executes it through the
// engine against a fresh in-memory store, reads the run back from the
// store, and checks the expectations against what was recorded.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: unit-square
//	description: "x^2 over [0,1] is resolved by a single region"
//	integrand: polynomial
//	params: { c2: 1 }
//	a: 0
//	b: 1
//	epsrel: 1e-10
//	max_step: 1e300       # optional, defaults to 1e300
//	expect:
//	  integral: 0.3333333333333333
//	  tolerance: 1e-12     # absolute; defaults to max(epsabs, epsrel*|integral|)
//	  max_error: 1e-10
//	  min_regions: 1
//	  max_regions: 1
//	  degenerate: false
//
// Unknown fields are rejected so typos fail loudly.
//
// # Deterministic Testing
//
// Run IDs come from testutil.SequentialIDGenerator and the clock is fixed,
// so a scenario's recorded run is reproducible. Golden snapshots (see
// RunWithGolden) hold the integral rounded to ten significant digits and
// the region counts, which are deterministic for a given integrand.
package harness
