package quad

import (
	"log/slog"
	"math"
)

// DegeneracyThreshold is the smallest relative region width the refinement
// loop will bisect. It sits a few ulps above float64 epsilon (~2.2e-16) and
// must be re-derived for any other precision.
const DegeneracyThreshold = 1e-14

// Result is the outcome of one integration.
//
// Integral and Error are the contract. The remaining fields are diagnostics.
type Result struct {
	Integral float64 `json:"integral"`
	Error    float64 `json:"error"`

	Regions     int  `json:"regions"`     // regions in the final partition
	Initial     int  `json:"initial"`     // regions in the initial decomposition
	Iterations  int  `json:"iterations"`  // bisections performed
	Evaluations int  `json:"evaluations"` // calls to the integrand
	Degenerate  bool `json:"degenerate"`  // refinement stopped by the degeneracy guard
}

// Snapshot describes the region store after the initial decomposition
// (Iteration 0) or after a bisection.
type Snapshot struct {
	Iteration int
	// Split is the region that was just bisected. Zero for Iteration 0.
	Split Region
	// Integral and Error are the running totals.
	Integral float64
	Error    float64
	// Regions is a read-only view of the store, valid only during Observe.
	Regions []Region
}

// Observer receives snapshots of the refinement loop.
type Observer interface {
	Observe(Snapshot)
}

// Integrator carries the side channels of an integration. The zero value is
// ready to use and logs to slog.Default().
type Integrator struct {
	// Logger receives the region-count notice and the degeneracy warning.
	Logger *slog.Logger

	// Observer, when set, is called after every refinement step.
	Observer Observer
}

var defaultIntegrator Integrator

// Integrate approximates the integral of f over [a,b] using the zero-value
// Integrator. See (*Integrator).Integrate.
func Integrate(f Func, a, b, epsabs, epsrel, maxStep float64) Result {
	return defaultIntegrator.Integrate(f, a, b, epsabs, epsrel, maxStep)
}

// Integrate approximates the integral of f over [a,b].
//
// Refinement continues while error > epsabs and error/|integral| > epsrel,
// so satisfying either tolerance ends it. maxStep caps the width of the
// initial regions at 15*maxStep. Inputs are not validated.
func (in *Integrator) Integrate(f Func, a, b, epsabs, epsrel, maxStep float64) Result {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxWidth := maxStep * NodeCount

	n := int(math.Ceil((b - a) / maxWidth))
	if n < 1 {
		n = 1
	}

	store := newRegionStore(n + 64)
	res := Result{Initial: n}

	var integral, errsum float64
	width := (b - a) / float64(n)
	for i := 0; i < n; i++ {
		lo := a + float64(i)*width
		hi := b
		if i < n-1 {
			hi = a + float64(i+1)*width
		}
		r := Evaluate(f, lo, hi)
		store.Insert(r)
		integral += r.Value
		errsum += r.Error
	}
	res.Evaluations = n * NodeCount
	in.observe(Snapshot{Integral: integral, Error: errsum, Regions: store.View()})

	for errsum > epsabs && errsum/math.Abs(integral) > epsrel {
		old := store.ExtractMax()

		if old.B-old.A < math.Max(math.Abs(old.A), math.Abs(old.B))*DegeneracyThreshold {
			logger.Warn("integration step is smaller than spacing between numbers",
				"a", old.A, "b", old.B, "error", errsum)
			// The popped region still belongs to the partition.
			store.Insert(old)
			res.Degenerate = true
			break
		}

		mid := (old.A + old.B) / 2
		left := Evaluate(f, old.A, mid)
		right := Evaluate(f, mid, old.B)
		store.Insert(left)
		store.Insert(right)

		integral += left.Value + right.Value - old.Value
		errsum += left.Error + right.Error - old.Error

		res.Iterations++
		res.Evaluations += 2 * NodeCount
		in.observe(Snapshot{
			Iteration: res.Iterations,
			Split:     old,
			Integral:  integral,
			Error:     errsum,
			Regions:   store.View(),
		})
	}

	res.Regions = store.Len()
	logger.Info("integration regions", "count", res.Regions)

	res.Integral, res.Error = store.Drain()
	return res
}

func (in *Integrator) observe(s Snapshot) {
	if in.Observer != nil {
		in.Observer.Observe(s)
	}
}
