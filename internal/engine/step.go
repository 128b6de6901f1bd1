// Package engine runs ordered provisioning steps with uniform check/act/verify
// semantics. A step is only acted on when its precondition is unsatisfied, so
// re-running a phase against an already-provisioned host is a no-op.
package engine

import "context"

// Step is a named unit of provisioning work.
//
// Check reports whether the step's outcome is already in place; a Check error
// is treated as "not satisfied" and the action runs anyway, surfacing any
// deeper failure there. A nil Check means the step always runs. A nil Verify
// means a completed action counts as passed.
type Step struct {
	ID       string
	Label    string
	Critical bool // a failed critical step aborts the run

	Check  func(ctx context.Context) (bool, error)
	Run    func(ctx context.Context) error
	Verify func(ctx context.Context) (bool, error)
}

// Outcome classifies how a single step ended.
type Outcome string

const (
	OutcomeSkipped      Outcome = "skipped"       // precondition already satisfied
	OutcomePassed       Outcome = "passed"        // action ran and verification held
	OutcomeFailedAction Outcome = "failed-action" // the action itself errored
	OutcomeFailedVerify Outcome = "failed-verify" // action completed but verification failed
)

// Status is the overall result of a phase run.
type Status string

const (
	StatusComplete     Status = "complete"
	StatusWithWarnings Status = "complete-with-warnings"
	StatusAborted      Status = "aborted"
)

// StepResult records one step's outcome for the end-of-run report.
type StepResult struct {
	ID      string
	Label   string
	Outcome Outcome
	Detail  string
}

// RunReport is the ordered record of a phase run.
type RunReport struct {
	Results []StepResult
	Status  Status

	// FailedStep points at the step that aborted the run, if any.
	FailedStep *StepResult
}

// Failed reports whether any step ended in a failure outcome.
func (r *RunReport) Failed() bool {
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailedAction || res.Outcome == OutcomeFailedVerify {
			return true
		}
	}
	return false
}

// Skipped returns the number of steps whose precondition was already satisfied.
func (r *RunReport) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeSkipped {
			n++
		}
	}
	return n
}
