package testutil

import (
	"sort"

	"github.com/roach88/gkquad/internal/quad"
)

// RecordedStep is a copy of a quad.Snapshot that is safe to keep after
// Observe returns. Regions are sorted by left endpoint.
type RecordedStep struct {
	Iteration int
	Split     quad.Region
	Integral  float64
	Error     float64
	Regions   []quad.Region
}

// RecordingObserver keeps every snapshot the integrator reports.
//
// Not safe for concurrent use: attach one observer per Integrate call.
type RecordingObserver struct {
	Steps []RecordedStep
}

// Observe implements quad.Observer.
func (o *RecordingObserver) Observe(s quad.Snapshot) {
	regions := make([]quad.Region, len(s.Regions))
	copy(regions, s.Regions)
	sort.Slice(regions, func(i, j int) bool { return regions[i].A < regions[j].A })

	o.Steps = append(o.Steps, RecordedStep{
		Iteration: s.Iteration,
		Split:     s.Split,
		Integral:  s.Integral,
		Error:     s.Error,
		Regions:   regions,
	})
}

// Initial returns the snapshot taken right after the initial decomposition.
// Returns false if nothing was recorded.
func (o *RecordingObserver) Initial() (RecordedStep, bool) {
	if len(o.Steps) == 0 {
		return RecordedStep{}, false
	}
	return o.Steps[0], true
}

// Last returns the most recent snapshot. Returns false if nothing was recorded.
func (o *RecordingObserver) Last() (RecordedStep, bool) {
	if len(o.Steps) == 0 {
		return RecordedStep{}, false
	}
	return o.Steps[len(o.Steps)-1], true
}
