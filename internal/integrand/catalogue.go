package integrand

import (
	"math"

	"github.com/roach88/gkquad/internal/quad"
)

// Demo integrands. These are the workloads of the demo command; each has a
// deliberately awkward feature (periodic kinks, a tiny domain, jumps,
// oscillation) that forces adaptive refinement.

// Mixed combines a sawtooth-squared term, a square root and a slowly
// chirping sine.
func Mixed(x float64) float64 {
	f := math.Pow(math.Mod(x, 1234)/100, 2)
	f += math.Sqrt(x) * 0.2
	f += math.Sin(x/58*math.Exp(-x/2000)) * 30
	return f
}

// OffsetSquare is 1e-5 + x², meant for a micro-scale domain.
func OffsetSquare(x float64) float64 {
	return 1e-5 + math.Pow(x, 2)
}

// Staircase mixes a 12-periodic reciprocal sawtooth with 0.3-high steps of
// period 23. Its jumps make tight tolerances unreachable.
func Staircase(x float64) float64 {
	f := 1 / (1 + math.Mod(x, 12))
	f += math.Floor(math.Mod(x, 23)/5) * 0.3
	return f
}

// XSinX is x·sin(x).
func XSinX(x float64) float64 {
	return math.Sin(x) * x
}

// Default returns a registry with every built-in integrand.
func Default() *Registry {
	return NewRegistry(builtins()...)
}

func fixed(f quad.Func) func(map[string]float64) quad.Func {
	return func(map[string]float64) quad.Func { return f }
}

func builtins() []Definition {
	return []Definition{
		{
			Name:        "mixed",
			Description: "((x mod 1234)/100)^2 + 0.2*sqrt(x) + 30*sin(x/58*exp(-x/2000))",
			Domain:      [2]float64{14.9, 4534.453},
			Build:       fixed(Mixed),
		},
		{
			Name:        "offset-square",
			Description: "1e-5 + x^2",
			Domain:      [2]float64{-1e-6, 3e-6},
			Build:       fixed(OffsetSquare),
		},
		{
			Name:        "staircase",
			Description: "1/(1 + (x mod 12)) + 0.3*floor((x mod 23)/5)",
			Domain:      [2]float64{474564, 474599},
			Build:       fixed(Staircase),
		},
		{
			Name:        "x-sin-x",
			Description: "x*sin(x)",
			Domain:      [2]float64{-50, 50},
			Build:       fixed(XSinX),
		},
		{
			Name:        "constant",
			Description: "c",
			Params:      map[string]float64{"c": 1},
			Domain:      [2]float64{0, 1},
			Build: func(p map[string]float64) quad.Func {
				c := p["c"]
				return func(float64) float64 { return c }
			},
		},
		{
			Name:        "polynomial",
			Description: "c0 + c1*x + c2*x^2 + c3*x^3",
			Params:      map[string]float64{"c0": 0, "c1": 0, "c2": 1, "c3": 0},
			Domain:      [2]float64{0, 1},
			Build: func(p map[string]float64) quad.Func {
				c0, c1, c2, c3 := p["c0"], p["c1"], p["c2"], p["c3"]
				return func(x float64) float64 { return c0 + x*(c1+x*(c2+x*c3)) }
			},
		},
		{
			Name:        "sin",
			Description: "amp*sin(freq*x + phase)",
			Params:      map[string]float64{"amp": 1, "freq": 1, "phase": 0},
			Domain:      [2]float64{0, math.Pi},
			Build: func(p map[string]float64) quad.Func {
				amp, freq, phase := p["amp"], p["freq"], p["phase"]
				return func(x float64) float64 { return amp * math.Sin(freq*x+phase) }
			},
		},
		{
			Name:        "exp",
			Description: "exp(rate*x)",
			Params:      map[string]float64{"rate": 1},
			Domain:      [2]float64{0, 1},
			Build: func(p map[string]float64) quad.Func {
				rate := p["rate"]
				return func(x float64) float64 { return math.Exp(rate * x) }
			},
		},
		{
			Name:        "gaussian",
			Description: "exp(-((x-mu)/sigma)^2/2) / (sigma*sqrt(2*pi))",
			Params:      map[string]float64{"mu": 0, "sigma": 1},
			Domain:      [2]float64{-10, 10},
			Build: func(p map[string]float64) quad.Func {
				mu, sigma := p["mu"], p["sigma"]
				norm := 1 / (sigma * math.Sqrt(2*math.Pi))
				return func(x float64) float64 {
					z := (x - mu) / sigma
					return norm * math.Exp(-z*z/2)
				}
			},
		},
		{
			Name:        "damped-cosine",
			Description: "exp(-decay*x)*cos(freq*x)",
			Params:      map[string]float64{"decay": 1, "freq": 5},
			Domain:      [2]float64{0, 4},
			Build: func(p map[string]float64) quad.Func {
				decay, freq := p["decay"], p["freq"]
				return func(x float64) float64 { return math.Exp(-decay*x) * math.Cos(freq*x) }
			},
		},
		{
			Name:        "step",
			Description: "low for x < at, high otherwise",
			Params:      map[string]float64{"at": 0.5, "low": 0, "high": 1},
			Domain:      [2]float64{0, 1},
			Build: func(p map[string]float64) quad.Func {
				at, low, high := p["at"], p["low"], p["high"]
				return func(x float64) float64 {
					if x < at {
						return low
					}
					return high
				}
			},
		},
	}
}
