// Package metrics provides observability hooks for publish and daemon
// operations.
//
// The Recorder interface defines all metric operations. NoopRecorder is the
// default implementation and does nothing, so components take a Recorder by
// dependency injection without nil checks. PrometheusRecorder forwards to a
// Prometheus registry and is activated when the daemon's metrics endpoint is
// enabled.
package metrics
