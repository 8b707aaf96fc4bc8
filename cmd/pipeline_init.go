package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/adbuddy-ai/backend/internal/pipeline"
	"github.com/adbuddy-ai/backend/internal/store"
	anthropicpkg "github.com/adbuddy-ai/backend/pkg/anthropic"
	"github.com/adbuddy-ai/backend/pkg/geocode"
	"github.com/adbuddy-ai/backend/pkg/qloo"
)

// pipelineEnv holds the initialized store, clients, and pipeline used by
// the competitors/campaign/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store and all API clients and builds the
// pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic API key is required (ADBUDDY_ANTHROPIC_KEY)")
	}
	if cfg.Qloo.Key == "" {
		return nil, eris.New("qloo API key is required (ADBUDDY_QLOO_KEY)")
	}
	if cfg.Here.Key == "" {
		return nil, eris.New("HERE API key is required (ADBUDDY_HERE_KEY)")
	}

	st, err := initStore()
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	qlooClient := qloo.NewClient(cfg.Qloo.Key,
		qloo.WithBaseURL(cfg.Qloo.BaseURL),
		qloo.WithRateLimit(cfg.Qloo.RatePerSecond),
	)
	geocodeClient := geocode.NewClient(cfg.Here.Key)

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg.Anthropic, anthropicClient, qlooClient, geocodeClient),
	}, nil
}

func initStore() (store.Store, error) {
	return store.New(cfg.Store)
}
