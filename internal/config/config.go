package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator"
	"github.com/spf13/viper"

	"github.com/papapumpkin/powermap/internal/centrality"
	"github.com/papapumpkin/powermap/internal/graph"
	"github.com/papapumpkin/powermap/internal/roster"
	"github.com/papapumpkin/powermap/internal/telemetry"
)

// TelemetryOff as telemetry_path disables the event log.
const TelemetryOff = "off"

// AliasConfig maps one party short form to its canonical name.
type AliasConfig struct {
	From string `mapstructure:"from" validate:"required"`
	To   string `mapstructure:"to" validate:"required"`
}

// NormalizeConfig holds record normalizer settings.
type NormalizeConfig struct {
	DefaultCategory    string        `mapstructure:"default_category" validate:"required"`
	PlaceholderPattern string        `mapstructure:"placeholder_pattern"`
	Aliases            []AliasConfig `mapstructure:"aliases" validate:"dive"`
}

// GraphConfig holds co-membership graph construction settings.
type GraphConfig struct {
	MaxCliqueSize int `mapstructure:"max_clique_size" validate:"gte=0"`
	HubCount      int `mapstructure:"hub_count" validate:"gte=1"`
	Workers       int `mapstructure:"workers" validate:"gte=1,lte=256"`
}

// ScoreConfig holds PageRank settings.
type ScoreConfig struct {
	Damping       float64 `mapstructure:"damping" validate:"gte=0,lt=1"`
	Epsilon       float64 `mapstructure:"epsilon" validate:"gt=0"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"gte=1,lte=10000"`
}

// EncodeConfig holds the score → visual attribute mapping.
type EncodeConfig struct {
	BaseSize       float64 `mapstructure:"base_size" validate:"gte=0"`
	ScaleFactor    float64 `mapstructure:"scale_factor" validate:"gt=0"`
	LabelThreshold float64 `mapstructure:"label_threshold" validate:"gte=0,lte=1"`
}

// SPARQLConfig holds settings for the live SPARQL source.
type SPARQLConfig struct {
	Endpoint  string        `mapstructure:"endpoint" validate:"required,url"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	Query     string        `mapstructure:"query"`
	Attempts  int           `mapstructure:"attempts" validate:"gte=1,lte=20"`
	Backoff   time.Duration `mapstructure:"backoff" validate:"gte=0"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Config holds all runtime configuration for a powermap run.
// Values are populated from .powermap.yaml, POWERMAP_* env vars, and CLI flags.
type Config struct {
	Input         string          `mapstructure:"input"`
	Source        string          `mapstructure:"source" validate:"omitempty,oneof=auto toml json sparql-json csv sqlite sparql"`
	Format        string          `mapstructure:"format" validate:"oneof=json echarts summary"`
	Output        string          `mapstructure:"output"`
	DB            string          `mapstructure:"db"`
	TelemetryPath string          `mapstructure:"telemetry_path"` // "off" disables events
	MetricsFile   string          `mapstructure:"metrics_file"`
	Verbose       bool            `mapstructure:"verbose"`
	Normalize     NormalizeConfig `mapstructure:"normalize"`
	Graph         GraphConfig     `mapstructure:"graph"`
	Score         ScoreConfig     `mapstructure:"score"`
	Encode        EncodeConfig    `mapstructure:"encode"`
	SPARQL        SPARQLConfig    `mapstructure:"sparql"`
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	build := graph.DefaultBuildOptions()
	pr := graph.DefaultPageRankOptions()
	enc := centrality.DefaultEncodeOptions()

	v.SetDefault("input", "")
	v.SetDefault("source", "auto")
	v.SetDefault("format", "json")
	v.SetDefault("output", "data.json")
	v.SetDefault("db", "roster.db")
	v.SetDefault("telemetry_path", telemetry.DefaultPath)
	v.SetDefault("metrics_file", "")
	v.SetDefault("verbose", false)
	v.SetDefault("normalize.default_category", roster.DefaultCategory)
	v.SetDefault("normalize.placeholder_pattern", roster.DefaultPlaceholderPattern)
	v.SetDefault("graph.max_clique_size", build.MaxCliqueSize)
	v.SetDefault("graph.hub_count", build.HubCount)
	v.SetDefault("graph.workers", build.Workers)
	v.SetDefault("score.damping", pr.Damping)
	v.SetDefault("score.epsilon", pr.Epsilon)
	v.SetDefault("score.max_iterations", pr.MaxIterations)
	v.SetDefault("encode.base_size", enc.BaseSize)
	v.SetDefault("encode.scale_factor", enc.ScaleFactor)
	v.SetDefault("encode.label_threshold", enc.LabelThreshold)
	v.SetDefault("sparql.endpoint", "https://query.wikidata.org/sparql")
	v.SetDefault("sparql.user_agent", "powermap/1.0 (https://github.com/papapumpkin/powermap)")
	v.SetDefault("sparql.query", "")
	v.SetDefault("sparql.attempts", 5)
	v.SetDefault("sparql.backoff", 5*time.Second)
	v.SetDefault("sparql.timeout", 60*time.Second)
}

// Load reads configuration from the global viper instance, applying
// built-in defaults for any values not set by config file, environment,
// or flags.
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates configuration from v.
func LoadFrom(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the placeholder pattern
// compiles.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	if c.Normalize.PlaceholderPattern != "" {
		if _, err := regexp.Compile(c.Normalize.PlaceholderPattern); err != nil {
			return fmt.Errorf("config: invalid placeholder_pattern: %w", err)
		}
	}
	return nil
}

// RosterOptions converts normalizer settings. Configured aliases extend
// and override roster.DefaultAliases.
func (c Config) RosterOptions() (roster.Options, error) {
	aliases := roster.DefaultAliases()
	for _, a := range c.Normalize.Aliases {
		aliases[a.From] = a.To
	}
	opts := roster.Options{
		Aliases:         aliases,
		DefaultCategory: c.Normalize.DefaultCategory,
	}
	if c.Normalize.PlaceholderPattern != "" {
		re, err := regexp.Compile(c.Normalize.PlaceholderPattern)
		if err != nil {
			return roster.Options{}, fmt.Errorf("config: invalid placeholder_pattern: %w", err)
		}
		opts.Placeholder = re
	}
	return opts, nil
}

// TelemetryEnabled reports whether run events should be written.
func (c Config) TelemetryEnabled() bool {
	return c.TelemetryPath != "" && c.TelemetryPath != TelemetryOff
}

// BuildOptions converts graph settings.
func (c Config) BuildOptions() graph.BuildOptions {
	return graph.BuildOptions{
		MaxCliqueSize: c.Graph.MaxCliqueSize,
		HubCount:      c.Graph.HubCount,
		Workers:       c.Graph.Workers,
	}
}

// PageRankOptions converts scorer settings.
func (c Config) PageRankOptions() graph.PageRankOptions {
	return graph.PageRankOptions{
		Damping:       c.Score.Damping,
		Epsilon:       c.Score.Epsilon,
		MaxIterations: c.Score.MaxIterations,
	}
}

// EncodeOptions converts the visual mapping settings.
func (c Config) EncodeOptions() centrality.EncodeOptions {
	return centrality.EncodeOptions{
		BaseSize:       c.Encode.BaseSize,
		ScaleFactor:    c.Encode.ScaleFactor,
		LabelThreshold: c.Encode.LabelThreshold,
	}
}
