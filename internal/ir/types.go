package ir

import "time"

// Job is a fully specified integration request.
//
// Field tags serve both CUE job files (json) and YAML scenarios (yaml).
type Job struct {
	Name      string             `json:"name" yaml:"name"`
	Integrand string             `json:"integrand" yaml:"integrand"`
	Params    map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
	A         float64            `json:"a" yaml:"a"`
	B         float64            `json:"b" yaml:"b"`
	EpsAbs    float64            `json:"epsabs" yaml:"epsabs"`
	EpsRel    float64            `json:"epsrel" yaml:"epsrel"`
	MaxStep   float64            `json:"max_step" yaml:"max_step"`
}

// Canonical returns the identity-relevant fields of the job as a map ready
// for MarshalCanonical. Name is excluded.
func (j Job) Canonical() map[string]any {
	params := make(map[string]any, len(j.Params))
	for k, v := range j.Params {
		params[k] = v
	}
	return map[string]any{
		"integrand": j.Integrand,
		"params":    params,
		"a":         j.A,
		"b":         j.B,
		"epsabs":    j.EpsAbs,
		"epsrel":    j.EpsRel,
		"max_step":  j.MaxStep,
	}
}

// Run is the recorded outcome of executing one Job.
type Run struct {
	ID      string `json:"id"`
	Seq     int64  `json:"seq"` // assigned by the store, 0 until written
	JobHash string `json:"job_hash"`
	Job     Job    `json:"job"`

	Integral    float64 `json:"integral"`
	Error       float64 `json:"error"`
	Regions     int     `json:"regions"`
	Initial     int     `json:"initial"`
	Iterations  int     `json:"iterations"`
	Evaluations int     `json:"evaluations"`
	Degenerate  bool    `json:"degenerate"`

	Elapsed       time.Duration `json:"elapsed_ns"`
	CreatedAt     time.Time     `json:"created_at"`
	EngineVersion string        `json:"engine_version"`
}
