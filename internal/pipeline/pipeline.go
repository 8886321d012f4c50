// Package pipeline runs one powermap pass: normalize raw records, build
// the co-membership graph, score and encode actors, and assemble the
// payload with its statistics. Each stage is logged, timed and recorded
// as a telemetry event.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/papapumpkin/powermap/internal/centrality"
	"github.com/papapumpkin/powermap/internal/graph"
	"github.com/papapumpkin/powermap/internal/metrics"
	"github.com/papapumpkin/powermap/internal/payload"
	"github.com/papapumpkin/powermap/internal/roster"
	"github.com/papapumpkin/powermap/internal/telemetry"
)

// Stage names used for metrics and logs.
const (
	StageNormalize = "normalize"
	StageBuild     = "build"
	StageScore     = "score"
	StageEncode    = "encode"
	StageAssemble  = "assemble"
)

// Pipeline holds the settings and collaborators for a run. The zero value
// is usable: defaults apply, logging is discarded, and telemetry and
// metrics are disabled.
type Pipeline struct {
	Roster   roster.Options
	Build    graph.BuildOptions
	PageRank graph.PageRankOptions
	Encode   centrality.EncodeOptions
	Brokers  bool // compute betweenness for Payload.Brokers

	Logger   *log.Logger
	Emitter  *telemetry.Emitter // Optional; nil disables events.
	Recorder metrics.Recorder   // Optional; nil uses metrics.Noop.
	RunID    string             // Optional; generated when empty.
}

// New returns a Pipeline with production defaults and the given logger.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		Roster:   roster.DefaultOptions(),
		Build:    graph.DefaultBuildOptions(),
		PageRank: graph.DefaultPageRankOptions(),
		Encode:   centrality.DefaultEncodeOptions(),
		Logger:   logger,
	}
}

// Outcome is everything a run produces.
type Outcome struct {
	RunID   string
	Payload *payload.Payload
	Roster  *roster.Roster
	Graph   *graph.Graph
	Score   centrality.Result
	Report  graph.Report
}

// Run executes one pass over records. It fails only when ctx is cancelled
// during graph construction; a scorer failure yields a Degraded outcome.
func (p *Pipeline) Run(ctx context.Context, records []roster.Record) (*Outcome, error) {
	logger := p.logger()
	rec := p.recorder()
	runID := p.RunID
	if runID == "" {
		runID = telemetry.NewRunID()
	}
	logger = logger.With("run", runID[:min(8, len(runID))])

	p.emit(runID, telemetry.KindRunStart, map[string]any{"records": len(records)})

	done := metrics.TimeStage(rec, StageNormalize)
	r := roster.Normalize(records, p.rosterOptions())
	done()
	rec.AddDropped(r.Dropped)
	logger.Debug("normalized records", "actors", r.Len(), "groups", len(r.Groups), "dropped", r.Dropped)
	p.emit(runID, telemetry.KindNormalized, map[string]any{
		"actors": r.Len(), "groups": len(r.Groups), "dropped": r.Dropped,
	})

	done = metrics.TimeStage(rec, StageBuild)
	g, report, err := graph.Build(ctx, r, p.buildOptions())
	done()
	if err != nil {
		rec.IncRun("failed")
		p.emit(runID, telemetry.KindRunFailed, map[string]any{"stage": StageBuild, "error": err.Error()})
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	rec.SetGraphSize(g.Len(), g.EdgeCount())
	logger.Debug("built graph", "nodes", g.Len(), "edges", g.EdgeCount(),
		"skipped_groups", report.SkippedGroups, "proxied_groups", report.ProxiedGroups)
	p.emit(runID, telemetry.KindGraphBuilt, map[string]any{
		"nodes": g.Len(), "edges": g.EdgeCount(), "increments": report.Increments,
		"proxied_groups": report.ProxiedGroups,
	})

	done = metrics.TimeStage(rec, StageScore)
	res := centrality.NewScorer(p.pageRankOptions(), logger).Score(g)
	done()
	if res.State == centrality.Degraded {
		p.emit(runID, telemetry.KindDegraded, map[string]any{
			"reason": fmt.Sprint(res.Reason), "iterations": res.Iterations,
		})
	} else {
		p.emit(runID, telemetry.KindScored, map[string]any{"iterations": res.Iterations})
	}

	done = metrics.TimeStage(rec, StageEncode)
	nodes := centrality.Encode(r, res, p.encodeOptions())
	done()
	p.emit(runID, telemetry.KindEncoded, map[string]any{"nodes": len(nodes)})

	done = metrics.TimeStage(rec, StageAssemble)
	pl := assemble(r, g, res, nodes)
	if p.Brokers {
		pl.Brokers = g.Betweenness()
	}
	done()

	rec.IncRun(res.State.String())
	logger.Info("run complete", "nodes", len(pl.Nodes), "links", len(pl.Links),
		"categories", len(pl.Categories), "state", res.State)
	p.emit(runID, telemetry.KindRunDone, pl.Stats)

	return &Outcome{RunID: runID, Payload: pl, Roster: r, Graph: g, Score: res, Report: report}, nil
}

// assemble builds the payload and its statistics.
func assemble(r *roster.Roster, g *graph.Graph, res centrality.Result, nodes []payload.Node) *payload.Payload {
	cats := payload.Categories(nodes)
	return &payload.Payload{
		Nodes:      nodes,
		Links:      payload.Links(g.Edges()),
		Categories: cats,
		Stats: payload.Stats{
			NodeCount:      len(nodes),
			EdgeCount:      g.EdgeCount(),
			CategoryCount:  len(cats),
			ComponentCount: len(g.Components()),
			Density:        g.Density(),
			DroppedRecords: r.Dropped,
			ScoreState:     res.State.String(),
			Iterations:     res.Iterations,
			CategorySizes:  r.CategorySizes(),
		},
	}
}

func (p *Pipeline) emit(runID, kind string, data any) {
	if p.Emitter == nil {
		return
	}
	if err := p.Emitter.Emit(telemetry.Event{Kind: kind, RunID: runID, Data: data}); err != nil {
		p.logger().Warn("telemetry emit failed", "kind", kind, "err", err)
	}
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

func (p *Pipeline) recorder() metrics.Recorder {
	if p.Recorder == nil {
		return metrics.Noop{}
	}
	return p.Recorder
}

func (p *Pipeline) rosterOptions() roster.Options {
	if p.Roster.DefaultCategory == "" && p.Roster.Aliases == nil && p.Roster.Placeholder == nil {
		return roster.DefaultOptions()
	}
	return p.Roster
}

func (p *Pipeline) buildOptions() graph.BuildOptions {
	if p.Build == (graph.BuildOptions{}) {
		return graph.DefaultBuildOptions()
	}
	return p.Build
}

func (p *Pipeline) pageRankOptions() graph.PageRankOptions {
	if p.PageRank == (graph.PageRankOptions{}) {
		return graph.DefaultPageRankOptions()
	}
	return p.PageRank
}

func (p *Pipeline) encodeOptions() centrality.EncodeOptions {
	if p.Encode == (centrality.EncodeOptions{}) {
		return centrality.DefaultEncodeOptions()
	}
	return p.Encode
}
