package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for publish and daemon metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder allows optional injection without nil checks at call sites.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	ObservePublishDuration(d time.Duration)
	IncStepResult(step string, result ResultLabel)
	IncPublishOutcome(outcome, trigger string)
	SetQueueDepth(n int)
	IncWebhookRequest(status string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) ObservePublishDuration(time.Duration)      {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) IncPublishOutcome(string, string)          {}
func (NoopRecorder) SetQueueDepth(int)                         {}
func (NoopRecorder) IncWebhookRequest(string)                  {}
