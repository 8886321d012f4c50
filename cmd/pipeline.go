package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/powermap/internal/config"
	"github.com/papapumpkin/powermap/internal/metrics"
	"github.com/papapumpkin/powermap/internal/payload"
	"github.com/papapumpkin/powermap/internal/pipeline"
	"github.com/papapumpkin/powermap/internal/roster"
	"github.com/papapumpkin/powermap/internal/source"
	"github.com/papapumpkin/powermap/internal/telemetry"
)

// stdoutPath as an output path writes to the command's stdout.
const stdoutPath = "-"

// addInputFlags registers the input selection flags shared by build,
// rank and import.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "input file or database (default: live SPARQL endpoint)")
	cmd.Flags().StringP("source", "s", "", "source kind: auto, toml, json, sparql-json, csv, sqlite, sparql")
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input, _ = flags.GetString("input")
	}
	if flags.Changed("source") {
		cfg.Source, _ = flags.GetString("source")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("db") {
		cfg.DB, _ = flags.GetString("db")
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.Verbose = true
	}
}

// loadConfig loads configuration and applies the command's flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// sourceOptions maps configuration onto a source selection.
func sourceOptions(cfg config.Config, logger *log.Logger) source.Options {
	client := source.NewClient(cfg.SPARQL.Endpoint, cfg.SPARQL.UserAgent, logger)
	if cfg.SPARQL.Query != "" {
		client.Query = cfg.SPARQL.Query
	}
	client.Attempts = cfg.SPARQL.Attempts
	client.Backoff = cfg.SPARQL.Backoff
	client.HTTP.Timeout = cfg.SPARQL.Timeout

	return source.Options{
		Kind:   source.Kind(cfg.Source),
		Path:   cfg.Input,
		SPARQL: client,
	}
}

// loadRecords acquires raw records for a run.
func loadRecords(ctx context.Context, cfg config.Config, logger *log.Logger) ([]roster.Record, error) {
	recs, err := source.Load(ctx, sourceOptions(cfg, logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded records", "records", len(recs), "input", cfg.Input, "source", cfg.Source)
	return recs, nil
}

// runEnv bundles the per-command pipeline collaborators that need closing.
type runEnv struct {
	pipeline *pipeline.Pipeline
	emitter  *telemetry.Emitter
	prom     *metrics.Prometheus
	cfg      config.Config
	logger   *log.Logger
}

// newRunEnv builds a pipeline from configuration. Telemetry and the
// Prometheus recorder are attached only when configured.
func newRunEnv(cfg config.Config, logger *log.Logger) (*runEnv, error) {
	ropts, err := cfg.RosterOptions()
	if err != nil {
		return nil, err
	}
	p := &pipeline.Pipeline{
		Roster:   ropts,
		Build:    cfg.BuildOptions(),
		PageRank: cfg.PageRankOptions(),
		Encode:   cfg.EncodeOptions(),
		Logger:   logger,
	}
	env := &runEnv{pipeline: p, cfg: cfg, logger: logger}

	if cfg.TelemetryEnabled() {
		em, err := telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return nil, err
		}
		env.emitter = em
		p.Emitter = em
	}
	if cfg.MetricsFile != "" {
		env.prom = metrics.NewPrometheus()
		p.Recorder = env.prom
	}
	return env, nil
}

// close flushes metrics and closes the event log.
func (e *runEnv) close() {
	if e.prom != nil {
		if err := e.prom.WriteTextfile(e.cfg.MetricsFile); err != nil {
			e.logger.Warn("metrics not written", "err", err)
		}
	}
	if err := e.emitter.Close(); err != nil {
		e.logger.Warn("telemetry close failed", "err", err)
	}
}

// writeOutput writes rendered output to path, or to w for "-".
func writeOutput(w io.Writer, path, content string) error {
	if path == stdoutPath || path == "" {
		_, err := io.WriteString(w, content)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// render formats p with the named format.
func render(format string, p *payload.Payload) (string, error) {
	f, err := payload.FormatByName(format)
	if err != nil {
		return "", err
	}
	return f.Render(p)
}
