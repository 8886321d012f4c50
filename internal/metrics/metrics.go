// Package metrics provides a minimal instrumentation interface for the
// pipeline with a no-op default and a Prometheus-backed implementation
// that can be dumped to a node_exporter textfile.
package metrics

import "time"

// Recorder defines the metrics surface used by the pipeline.
type Recorder interface {
	// ObserveStage records the duration of one pipeline stage.
	ObserveStage(stage string, d time.Duration)
	// IncRun counts a finished run by scorer state (scored, degraded, failed).
	IncRun(state string)
	// SetGraphSize records the size of the last built graph.
	SetGraphSize(nodes, edges int)
	// AddDropped counts records rejected by the normalizer.
	AddDropped(n int)
}

// Noop implements Recorder with no-ops.
type Noop struct{}

func (Noop) ObserveStage(string, time.Duration) {}
func (Noop) IncRun(string)                      {}
func (Noop) SetGraphSize(int, int)              {}
func (Noop) AddDropped(int)                     {}

// TimeStage is a helper to time a pipeline stage.
func TimeStage(r Recorder, stage string) func() {
	start := time.Now()
	return func() {
		r.ObserveStage(stage, time.Since(start))
	}
}
