// Package detect extracts structured filters from normalized query text with
// deterministic rules.
//
// A Detector is an ordered list of pure steps. Each step sees the text and the
// fields found by earlier steps and either returns new fields or abstains.
// Results are merged without overwrite, so an earlier step always wins.
package detect

import (
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// Output is what a single step contributes.
type Output struct {
	Fields   query.Fields
	Warnings []string
}

// Func is a single detection step. It must be pure.
type Func func(in Input, found query.Fields) Output

// Step names a detection function for logging and tests.
type Step struct {
	Name   string
	Detect Func
}

// Detection is the merged result of a full pass.
type Detection struct {
	Fields   query.Fields
	Warnings []string
	// Matched lists the steps that contributed at least one field.
	Matched []string
}

// Found reports whether the pass produced anything usable. A pass with no
// fields is a miss and escalates to the language model.
func (d Detection) Found() bool {
	return !d.Fields.IsEmpty()
}

// Filters converts a successful detection into immutable filters.
func (d Detection) Filters() query.Filters {
	return query.New(d.Fields, true, d.Warnings)
}

// Detector runs steps in a fixed order.
type Detector struct {
	steps []Step
}

// New creates a detector with the given steps, evaluated in order.
func New(steps ...Step) *Detector {
	return &Detector{steps: steps}
}

// Default returns the standard detection pipeline.
func Default() *Detector {
	return New(
		Step{Name: "exact", Detect: ExactPhrase},
		Step{Name: "gender", Detect: Gender},
		Step{Name: "profile_pic", Detect: ProfilePicture},
		Step{Name: "sort", Detect: Sort},
		Step{Name: "parity", Detect: Parity},
		Step{Name: "name", Detect: Name},
		Step{Name: "unsupported", Detect: Unsupported},
	)
}

// Steps returns the step names in evaluation order.
func (d *Detector) Steps() []string {
	names := make([]string, len(d.steps))
	for i, s := range d.steps {
		names[i] = s.Name
	}
	return names
}

// Detect runs every step over normalized text.
func (d *Detector) Detect(normalized string) Detection {
	in := NewInput(normalized)

	var det Detection
	for _, s := range d.steps {
		out := s.Detect(in, det.Fields)
		if !out.Fields.IsEmpty() {
			det.Matched = append(det.Matched, s.Name)
		}
		det.Fields = det.Fields.Merge(out.Fields)
		det.Warnings = appendUnique(det.Warnings, out.Warnings...)
	}
	return det
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, d := range dst {
			if d == it {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, it)
		}
	}
	return dst
}
