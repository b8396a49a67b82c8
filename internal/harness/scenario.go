package harness

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gkquad/internal/ir"
)

// DefaultMaxStep is used when a scenario omits max_step: the initial
// decomposition is a single region.
const DefaultMaxStep = 1e300

// Scenario defines one integration test case.
type Scenario struct {
	// Job holds name, integrand, params, bounds and tolerances, inlined
	// at the top level of the YAML document.
	ir.Job `yaml:",inline"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Expect lists the checks applied to the recorded run.
	Expect Expect `yaml:"expect"`
}

// Expect specifies expected run properties. Unset fields are not checked.
type Expect struct {
	// Integral is the reference value of the integral.
	Integral *float64 `yaml:"integral,omitempty"`

	// Tolerance is the allowed absolute deviation from Integral.
	// Zero means max(epsabs, epsrel*|Integral|).
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// MaxError bounds the reported error estimate.
	MaxError *float64 `yaml:"max_error,omitempty"`

	// MinRegions and MaxRegions bound the final region count.
	MinRegions int `yaml:"min_regions,omitempty"`
	MaxRegions int `yaml:"max_regions,omitempty"`

	// Degenerate requires the degeneracy guard to have fired (or not).
	Degenerate *bool `yaml:"degenerate,omitempty"`
}

// empty reports whether no check is configured.
func (e Expect) empty() bool {
	return e.Integral == nil && e.MaxError == nil && e.MinRegions == 0 && e.MaxRegions == 0 && e.Degenerate == nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "max_errror:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.MaxStep == 0 {
		scenario.MaxStep = DefaultMaxStep
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads a single scenario file, or every *.yaml / *.yml file
// directly inside a directory, in file name order. Scenario names must be
// unique.
func LoadScenarios(target string) ([]*Scenario, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", target, err)
	}

	if !info.IsDir() {
		s, err := LoadScenario(target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", target, err)
		}
		return []*Scenario{s}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", target, err)
	}

	scenarios := make([]*Scenario, 0)
	seen := make(map[string]string)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		p := filepath.Join(target, e.Name())
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario name %q in %s and %s", s.Name, prev, p)
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Filter returns the scenarios whose name matches the glob pattern
// (path.Match syntax). An empty pattern matches everything.
func Filter(scenarios []*Scenario, pattern string) ([]*Scenario, error) {
	if pattern == "" {
		return scenarios, nil
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}

	out := make([]*Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if ok, _ := path.Match(pattern, s.Name); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
// Bounds and tolerances are left to the engine, which reports them as
// INVALID_INPUT.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain slashes or spaces", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Integrand == "" {
		return fmt.Errorf("integrand is required")
	}

	if s.Expect.empty() {
		return fmt.Errorf("expect must configure at least one check")
	}

	if s.Expect.Tolerance < 0 {
		return fmt.Errorf("expect.tolerance must be non-negative")
	}
	if s.Expect.Integral != nil && s.Expect.Tolerance == 0 && s.EpsAbs == 0 && s.EpsRel == 0 {
		return fmt.Errorf("expect.tolerance is required when epsabs and epsrel are both zero")
	}

	if s.Expect.MinRegions < 0 || s.Expect.MaxRegions < 0 {
		return fmt.Errorf("expect region bounds must be non-negative")
	}
	if s.Expect.MaxRegions > 0 && s.Expect.MinRegions > s.Expect.MaxRegions {
		return fmt.Errorf("expect.min_regions (%d) exceeds expect.max_regions (%d)", s.Expect.MinRegions, s.Expect.MaxRegions)
	}

	return nil
}
