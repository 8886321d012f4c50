package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Prometheus records pipeline metrics into its own registry.
type Prometheus struct {
	registry     *prom.Registry
	stageSeconds *prom.HistogramVec
	runsTotal    *prom.CounterVec
	graphNodes   prom.Gauge
	graphEdges   prom.Gauge
	dropped      prom.Counter
}

// NewPrometheus creates a Prometheus recorder with a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prom.NewRegistry(),
		stageSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "powermap_stage_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"stage"}),
		runsTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "powermap_runs_total",
			Help: "Total number of pipeline runs by scorer state",
		}, []string{"state"}),
		graphNodes: prom.NewGauge(prom.GaugeOpts{
			Name: "powermap_graph_nodes",
			Help: "Actors in the last built graph",
		}),
		graphEdges: prom.NewGauge(prom.GaugeOpts{
			Name: "powermap_graph_edges",
			Help: "Co-membership edges in the last built graph",
		}),
		dropped: prom.NewCounter(prom.CounterOpts{
			Name: "powermap_dropped_records_total",
			Help: "Raw records rejected by the name-quality filter",
		}),
	}
	p.registry.MustRegister(p.stageSeconds, p.runsTotal, p.graphNodes, p.graphEdges, p.dropped)
	return p
}

func (p *Prometheus) ObserveStage(stage string, d time.Duration) {
	p.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *Prometheus) IncRun(state string) {
	p.runsTotal.WithLabelValues(state).Inc()
}

func (p *Prometheus) SetGraphSize(nodes, edges int) {
	p.graphNodes.Set(float64(nodes))
	p.graphEdges.Set(float64(edges))
}

func (p *Prometheus) AddDropped(n int) {
	if n > 0 {
		p.dropped.Add(float64(n))
	}
}

// Registry exposes the underlying registry, e.g. for promhttp.
func (p *Prometheus) Registry() *prom.Registry {
	return p.registry
}

// WriteTextfile writes the current metrics in the Prometheus text format
// to path, replacing the file atomically.
func (p *Prometheus) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
