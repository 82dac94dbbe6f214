package harness

import (
	"github.com/roach88/rewind/internal/engine"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Events is the number of events in the scenario's recording.
	Events int `json:"events"`

	// Positions is the playback position after each step.
	Positions []int `json:"positions"`

	// Final is the snapshot after the last step.
	Final *engine.Snapshot `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Errors:    []string{},
		Positions: []int{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
