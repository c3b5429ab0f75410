package harness

import "github.com/roach88/imgsweep/internal/aggregate"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Records is the merged inventory in discovery order.
	Records []aggregate.Record `json:"records"`

	// FailedSurfaces lists surfaces whose discovery failed as a whole.
	// Failed surfaces contribute no records.
	FailedSurfaces []int `json:"failed_surfaces,omitempty"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`

	// Catalog is the number of asset rows written to the catalog.
	Catalog int `json:"catalog"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Records: []aggregate.Record{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// surfaceFailed reports whether surface i failed.
func (r *Result) surfaceFailed(i int) bool {
	for _, f := range r.FailedSurfaces {
		if f == i {
			return true
		}
	}
	return false
}
