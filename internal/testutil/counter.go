package testutil

import (
	"sync/atomic"

	"github.com/roach88/gkquad/internal/quad"
)

// CountingFunc wraps an integrand and counts how often it is evaluated.
//
// Thread-safety: Func may be called from any goroutine; the count uses
// atomic operations.
type CountingFunc struct {
	f     quad.Func
	calls atomic.Int64
}

// NewCountingFunc wraps f. The counter starts at 0.
func NewCountingFunc(f quad.Func) *CountingFunc {
	return &CountingFunc{f: f}
}

// Func returns the wrapped integrand, suitable for passing to quad.Integrate.
func (c *CountingFunc) Func() quad.Func {
	return func(x float64) float64 {
		c.calls.Add(1)
		return c.f(x)
	}
}

// Calls returns the number of evaluations so far.
func (c *CountingFunc) Calls() int64 {
	return c.calls.Load()
}

// Reset sets the counter back to 0 so the same wrapper can be reused.
func (c *CountingFunc) Reset() {
	c.calls.Store(0)
}
