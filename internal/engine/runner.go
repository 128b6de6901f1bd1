package engine

import (
	"context"
	"fmt"
)

// Printer receives one status line per step as the run progresses.
// Implemented by ui.Console; tests plug in a silent printer.
type Printer interface {
	OK(format string, args ...any)
	Warn(format string, args ...any)
	Fail(format string, args ...any)
}

// Runner executes steps strictly in declared order. Steps have real-world
// ordering dependencies (a user must exist before its files are written), so
// there is no parallelism here.
type Runner struct {
	printer Printer
}

func NewRunner(p Printer) *Runner {
	return &Runner{printer: p}
}

// Run evaluates each step: skip when the precondition already holds, otherwise
// act and verify. A failed critical step aborts immediately; soft failures are
// recorded and the run continues. Side effects of already-executed steps are
// never rolled back.
func (r *Runner) Run(ctx context.Context, steps []Step) *RunReport {
	report := &RunReport{Status: StatusComplete}

	for _, step := range steps {
		res := r.runOne(ctx, step)
		report.Results = append(report.Results, res)

		switch res.Outcome {
		case OutcomeSkipped:
			r.printer.OK("%s (already satisfied)", step.Label)
		case OutcomePassed:
			r.printer.OK("%s", step.Label)
		case OutcomeFailedAction, OutcomeFailedVerify:
			if step.Critical {
				r.printer.Fail("%s: %s", step.Label, res.Detail)
				report.Status = StatusAborted
				report.FailedStep = &report.Results[len(report.Results)-1]
				return report
			}
			r.printer.Warn("%s: %s", step.Label, res.Detail)
			report.Status = StatusWithWarnings
		}
	}

	return report
}

func (r *Runner) runOne(ctx context.Context, step Step) StepResult {
	res := StepResult{ID: step.ID, Label: step.Label}

	if step.Check != nil {
		satisfied, err := step.Check(ctx)
		if err == nil && satisfied {
			res.Outcome = OutcomeSkipped
			return res
		}
		// An unverifiable precondition proceeds to the action; whatever is
		// actually wrong will surface there.
	}

	if err := step.Run(ctx); err != nil {
		res.Outcome = OutcomeFailedAction
		res.Detail = err.Error()
		return res
	}

	if step.Verify != nil {
		ok, err := step.Verify(ctx)
		if err != nil {
			res.Outcome = OutcomeFailedVerify
			res.Detail = fmt.Sprintf("verification errored: %v", err)
			return res
		}
		if !ok {
			res.Outcome = OutcomeFailedVerify
			res.Detail = "verification failed after action completed"
			return res
		}
	}

	res.Outcome = OutcomePassed
	return res
}
