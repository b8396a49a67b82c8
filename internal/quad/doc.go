// Package quad implements adaptive one-dimensional integration with an
// embedded Gauss–Kronrod (G7/K15) rule.
//
// ARCHITECTURE:
//
// Worst-Region-First Refinement:
// The interval [a,b] is first split into equal regions no wider than
// 15*maxStep. Each region is evaluated once with the fixed 15-node rule,
// which yields a value (Kronrod sum) and an error estimate (difference
// between the Kronrod and the embedded Gauss sum). Regions live in a
// max-heap keyed by error. While neither tolerance is met the worst region
// is popped, bisected, and both halves are evaluated and pushed back.
//
// Running Totals:
// The loop maintains integral and error incrementally (subtract the parent,
// add the children). After the loop the store is summed once more from
// scratch and that clean sum is what gets returned.
//
// Degeneracy Guard:
// A region narrower than max(|a|,|b|)*DegeneracyThreshold cannot be
// meaningfully bisected in float64. Reaching one stops refinement with a
// warning and returns the current best estimate.
//
// CONTRACT:
//
// Integrate never fails and never validates its inputs. Invalid bounds or
// tolerances, and NaN or Inf produced by the integrand, propagate through
// the arithmetic. Callers that want input checks use Validate first.
//
// A single call is strictly sequential. Separate calls share nothing but
// the read-only rule tables and may run concurrently.
package quad
