// Package app builds a ready-to-use Shelf from configuration. Both the HTTP
// server and bookctl start here.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agenthands/shelfgraph/internal/config"
	"github.com/agenthands/shelfgraph/internal/core"
	"github.com/agenthands/shelfgraph/internal/core/explain"
	"github.com/agenthands/shelfgraph/internal/core/recommend"
	"github.com/agenthands/shelfgraph/internal/driver"
	"github.com/agenthands/shelfgraph/internal/llm"
)

const defaultConfigPath = "config/config.toml"

// LoadConfig reads path, or CONFIG_PATH, or config/config.toml, and applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// NewShelf assembles the shelf around an already-open executor.
func NewShelf(ctx context.Context, cfg *config.Config, d driver.GraphDriver, logger zerolog.Logger) (*core.Shelf, error) {
	if cfg.Breaker.Enabled {
		d = driver.NewBreakerDriver(d, cfg.Breaker, logger)
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	if llmClient == nil {
		logger.Info().Msg("no llm provider configured, explanations disabled")
	}

	rec := recommend.NewRecommender(d, logger, recommend.WithCandidatePool(cfg.Recommend.CandidatePool))
	exp := explain.NewExplainer(llmClient, cfg.Explain)
	return core.NewShelf(d, rec, exp, logger), nil
}

// Open connects to Neo4j and assembles the shelf.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*core.Shelf, error) {
	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.Neo4j.URI, err)
	}

	shelf, err := NewShelf(ctx, cfg, d, logger)
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}
	return shelf, nil
}
