// Package skillflow provides a top-level convenience entry point for building
// the skill catalog with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/skillflow"
//
//	catalog, err := skillflow.New()
//	catalog, err := skillflow.New(skillflow.WithConfigPath("skillflow.yaml"))
//
//	out, err := catalog.Invoke(ctx, "arxiv.search",
//	    json.RawMessage(`{"query": "agent memory"}`))
//
// This is a thin wrapper around [config.Loader] and [skills.NewCatalog];
// use it when you prefer the shorter import path.
package skillflow

import (
	"go.uber.org/zap"

	"github.com/BaSui01/skillflow/config"
	"github.com/BaSui01/skillflow/internal/metrics"
	"github.com/BaSui01/skillflow/skills"
)

// Option configures the catalog created by [New].
type Option func(*options)

type options struct {
	configPath string
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// WithConfigPath sets the YAML configuration file path.
func WithConfigPath(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics attaches a Prometheus metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// New loads configuration and builds the skill catalog.
// Configuration precedence: defaults, then YAML file, then environment
// variables (SKILLFLOW_* plus provider-standard keys like MINIMAX_API_KEY).
func New(opts ...Option) (*skills.Catalog, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loader := config.NewLoader()
	if o.configPath != "" {
		loader = loader.WithConfigPath(o.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return skills.NewCatalog(cfg, o.logger, o.metrics)
}
