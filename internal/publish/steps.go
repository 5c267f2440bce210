package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/git"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
)

// Step is a discrete unit of work in the publish procedure.
type Step func(ctx context.Context, st *State) error

// StepErrorKind enumerates structured step error categories.
type StepErrorKind string

const (
	StepErrorFatal    StepErrorKind = "fatal"    // Publish must abort.
	StepErrorCanceled StepErrorKind = "canceled" // Context cancellation.
)

// StepError is a structured error carrying the failing step and underlying cause.
type StepError struct {
	Kind StepErrorKind
	Step StepName
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s step %s: %v", e.Kind, e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

func newFatalStepError(step StepName, err error) *StepError {
	return &StepError{Kind: StepErrorFatal, Step: step, Err: err}
}

func newCanceledStepError(step StepName, err error) *StepError {
	return &StepError{Kind: StepErrorCanceled, Step: step, Err: err}
}

// State carries mutable state across publish steps.
type State struct {
	Branch    string
	Message   string
	Identity  git.Identity
	Target    git.PushTarget
	OutputDir string

	Committed  bool
	CommitHash string
}

// runSteps executes steps in order, recording timing and stopping on the
// first error. There is no retry and no warning-and-continue path: a publish
// either runs every step or stops at the first failure.
func (p *Publisher) runSteps(ctx context.Context, report *Report, st *State, steps []StepDef) error {
	for _, sd := range steps {
		select {
		case <-ctx.Done():
			p.metrics.IncStepResult(string(sd.Name), metrics.ResultCanceled)
			return newCanceledStepError(sd.Name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := sd.Fn(ctx, st)
		dur := time.Since(t0)
		report.StepDurations[sd.Name] = dur

		p.metrics.ObserveStepDuration(string(sd.Name), dur)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				p.metrics.IncStepResult(string(sd.Name), metrics.ResultCanceled)
				return newCanceledStepError(sd.Name, err)
			}
			p.metrics.IncStepResult(string(sd.Name), metrics.ResultFatal)
			return newFatalStepError(sd.Name, err)
		}
		p.metrics.IncStepResult(string(sd.Name), metrics.ResultSuccess)
		p.logger.Debug("Publish step complete",
			logfields.Step(string(sd.Name)),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
