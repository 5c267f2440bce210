package publish

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	apperrors "git.home.luguber.info/inful/blogpub/internal/errors"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPublisher() *Publisher {
	return &Publisher{metrics: metrics.NoopRecorder{}, logger: testLogger()}
}

// TestRunStepsOrderAndTimings verifies that steps execute in order and each
// executed step records a duration.
func TestRunStepsOrderAndTimings(t *testing.T) {
	p := testPublisher()
	report := newReport(TriggerManual, "gh-pages")

	var order []StepName
	mk := func(name StepName) StepDef {
		return StepDef{Name: name, Fn: func(context.Context, *State) error {
			order = append(order, name)
			return nil
		}}
	}
	steps := []StepDef{mk(StepVerifyClean), mk(StepPrepareWorktree), mk(StepGenerate)}

	if err := p.runSteps(context.Background(), report, &State{}, steps); err != nil {
		t.Fatalf("runSteps: %v", err)
	}
	want := []StepName{StepVerifyClean, StepPrepareWorktree, StepGenerate}
	if len(order) != len(want) {
		t.Fatalf("executed %d steps, want %d", len(order), len(want))
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("step %d = %s, want %s", i, order[i], name)
		}
	}
	for _, name := range want {
		if _, ok := report.StepDurations[name]; !ok {
			t.Errorf("missing duration for step %s", name)
		}
	}
}

// TestRunStepsStopsAtFirstFailure ensures later steps never run after a
// failure and the returned error names the failing step.
func TestRunStepsStopsAtFirstFailure(t *testing.T) {
	p := testPublisher()
	report := newReport(TriggerManual, "gh-pages")

	boom := apperrors.GenerationFailed(errors.New("exit status 1"))
	pushed := false
	steps := []StepDef{
		{Name: StepGenerate, Fn: func(context.Context, *State) error { return boom }},
		{Name: StepPush, Fn: func(context.Context, *State) error { pushed = true; return nil }},
	}

	err := p.runSteps(context.Background(), report, &State{}, steps)
	if err == nil {
		t.Fatal("expected error from failing step")
	}
	if pushed {
		t.Error("push step ran after a fatal failure")
	}

	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected StepError, got %T", err)
	}
	if se.Step != StepGenerate || se.Kind != StepErrorFatal {
		t.Errorf("unexpected step error %+v", se)
	}
	if !errors.Is(err, boom) {
		t.Error("step error should wrap the cause")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryGenerator) {
		t.Error("wrapped error should keep its generator category")
	}
	if _, ok := report.StepDurations[StepPush]; ok {
		t.Error("skipped step must not record a duration")
	}
}

// TestRunStepsCanceledContext ensures cancellation short-circuits before the
// next step runs.
func TestRunStepsCanceledContext(t *testing.T) {
	p := testPublisher()
	report := newReport(TriggerManual, "gh-pages")

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	steps := []StepDef{
		{Name: StepVerifyClean, Fn: func(context.Context, *State) error { cancel(); return nil }},
		{Name: StepGenerate, Fn: func(context.Context, *State) error { ran = true; return nil }},
	}

	err := p.runSteps(ctx, report, &State{}, steps)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if ran {
		t.Error("step ran after context cancellation")
	}
	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected StepError, got %T", err)
	}
	if se.Kind != StepErrorCanceled {
		t.Errorf("expected canceled kind, got %s", se.Kind)
	}
}

func TestStepErrorText(t *testing.T) {
	se := newFatalStepError(StepPush, errors.New("connection refused"))
	got := se.Error()
	want := "fatal step push: connection refused"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestReportDurationAndErrorText(t *testing.T) {
	r := newReport(TriggerScheduled, "gh-pages")
	r.End = r.Start.Add(1500 * time.Millisecond)
	if r.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %s", r.Duration())
	}
	if r.ErrorText() != "" {
		t.Errorf("ErrorText() = %q for nil error", r.ErrorText())
	}
	r.Err = errors.New("boom")
	if r.ErrorText() != "boom" {
		t.Errorf("ErrorText() = %q", r.ErrorText())
	}
	if r.ID == "" {
		t.Error("report must carry a generated ID")
	}
}

func TestReportSuccess(t *testing.T) {
	cases := []struct {
		outcome Outcome
		want    bool
	}{
		{OutcomePublished, true},
		{OutcomeNoChanges, true},
		{OutcomeFailed, false},
	}
	for _, tc := range cases {
		r := &Report{Outcome: tc.outcome}
		if r.Success() != tc.want {
			t.Errorf("Success() for %s = %v, want %v", tc.outcome, r.Success(), tc.want)
		}
	}
}
