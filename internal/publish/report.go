package publish

import (
	"time"

	"github.com/google/uuid"
)

// Trigger identifies what initiated a publish.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerWebhook   Trigger = "webhook"
	TriggerScheduled Trigger = "scheduled"
)

// Outcome is the final classification of a publish attempt. A republish of
// identical content is a distinct success, not a failure.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeNoChanges Outcome = "no_changes"
	OutcomeFailed    Outcome = "failed"
)

// Report captures the result of one publish attempt.
type Report struct {
	ID            string
	Trigger       Trigger
	Branch        string
	Start         time.Time
	End           time.Time
	StepDurations map[StepName]time.Duration
	Outcome       Outcome
	Committed     bool
	CommitHash    string
	Message       string
	Err           error
}

func newReport(trigger Trigger, branch string) *Report {
	return &Report{
		ID:            uuid.NewString(),
		Trigger:       trigger,
		Branch:        branch,
		Start:         time.Now(),
		StepDurations: make(map[StepName]time.Duration),
	}
}

// Duration returns the wall-clock time of the attempt.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// ErrorText returns the error string, or "" for a successful attempt.
func (r *Report) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Success reports whether the attempt ended in a success outcome.
func (r *Report) Success() bool {
	return r.Outcome == OutcomePublished || r.Outcome == OutcomeNoChanges
}
