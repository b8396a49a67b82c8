// Package integrand provides a catalogue of named, parameterised integrands.
//
// The catalogue lets callers that only have text (CLI flags, job files,
// scenario files) refer to an integrand by name and supply its parameters as
// a map. Built integrands are plain quad.Func values with no shared state.
package integrand

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/gkquad/internal/quad"
)

// ErrUnknown is returned (wrapped) when a name is not in the catalogue.
var ErrUnknown = errors.New("unknown integrand")

// Definition describes one catalogue entry.
type Definition struct {
	// Name is the lookup key, lower-case with dashes.
	Name string

	// Description is a one-line human-readable formula.
	Description string

	// Params lists the accepted parameter names with their defaults.
	// Parameters not supplied by the caller take these values.
	Params map[string]float64

	// Domain is a sensible default interval [A, B].
	Domain [2]float64

	// Build returns the integrand for a complete parameter set.
	Build func(p map[string]float64) quad.Func
}

// ParamNames returns the parameter names sorted alphabetically.
func (d Definition) ParamNames() []string {
	names := make([]string, 0, len(d.Params))
	for k := range d.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Registry maps names to definitions. The zero value is empty; use
// NewRegistry or Default.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates a registry holding defs. A later definition with the
// same name replaces an earlier one.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		r.defs[d.Name] = d
	}
	return r
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for k := range r.defs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Definitions returns all definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	names := r.Names()
	defs := make([]Definition, len(names))
	for i, n := range names {
		defs[i] = r.defs[n]
	}
	return defs
}

// Build resolves name and returns its integrand with params merged over
// the defaults. Unknown parameter names are rejected so that typos in job
// files surface instead of silently using a default.
func (r *Registry) Build(name string, params map[string]float64) (quad.Func, error) {
	d, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknown, name, strings.Join(r.Names(), ", "))
	}

	merged := make(map[string]float64, len(d.Params))
	for k, v := range d.Params {
		merged[k] = v
	}
	for k, v := range params {
		if _, known := d.Params[k]; !known {
			return nil, &ParamError{Integrand: name, Param: k, Accepted: d.ParamNames()}
		}
		merged[k] = v
	}

	return d.Build(merged), nil
}

// ParamError reports a parameter the integrand does not accept.
type ParamError struct {
	Integrand string
	Param     string
	Accepted  []string
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	if len(e.Accepted) == 0 {
		return fmt.Sprintf("integrand %q takes no parameters, got %q", e.Integrand, e.Param)
	}
	return fmt.Sprintf("integrand %q has no parameter %q (accepted: %s)", e.Integrand, e.Param, strings.Join(e.Accepted, ", "))
}
