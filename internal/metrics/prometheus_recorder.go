package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	stepDuration    *prom.HistogramVec
	publishDuration prom.Histogram
	stepResults     *prom.CounterVec
	publishOutcome  *prom.CounterVec
	queueDepth      prom.Gauge
	webhookRequests *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogpub",
			Name:      "publish_step_duration_seconds",
			Help:      "Duration of individual publish steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"})
		pr.publishDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogpub",
			Name:      "publish_duration_seconds",
			Help:      "Total publish duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stepResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogpub",
			Name:      "publish_step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"step", "result"})
		pr.publishOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogpub",
			Name:      "publish_outcomes_total",
			Help:      "Publish outcomes by final status and trigger",
		}, []string{"outcome", "trigger"})
		pr.queueDepth = prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogpub",
			Name:      "daemon_queue_depth",
			Help:      "Pending publish requests in the daemon queue",
		})
		pr.webhookRequests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogpub",
			Name:      "webhook_requests_total",
			Help:      "Webhook requests by handling status",
		}, []string{"status"})
		reg.MustRegister(pr.stepDuration, pr.publishDuration, pr.stepResults, pr.publishOutcome, pr.queueDepth, pr.webhookRequests)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration) {
	if p == nil || p.publishDuration == nil {
		return
	}
	p.publishDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome, trigger string) {
	if p == nil || p.publishOutcome == nil {
		return
	}
	p.publishOutcome.WithLabelValues(outcome, trigger).Inc()
}

func (p *PrometheusRecorder) SetQueueDepth(n int) {
	if p == nil || p.queueDepth == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}

func (p *PrometheusRecorder) IncWebhookRequest(status string) {
	if p == nil || p.webhookRequests == nil {
		return
	}
	p.webhookRequests.WithLabelValues(status).Inc()
}
