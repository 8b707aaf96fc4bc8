// Package pipeline implements the insight and campaign pipelines: an LLM
// planner drafts a taste-graph parameter set, resolution steps fill in the
// vocabulary-bound fields, and the merged parameters drive recommendation
// queries whose results feed competitor discovery and campaign generation.
package pipeline

import (
	"github.com/adbuddy-ai/backend/internal/config"
	"github.com/adbuddy-ai/backend/pkg/anthropic"
	"github.com/adbuddy-ai/backend/pkg/geocode"
	"github.com/adbuddy-ai/backend/pkg/qloo"
)

// Pipeline wires the external clients together.
type Pipeline struct {
	cfg      config.AnthropicConfig
	ai       anthropic.Client
	qloo     qloo.Client
	geocoder geocode.Client
}

// New creates a pipeline.
func New(cfg config.AnthropicConfig, ai anthropic.Client, q qloo.Client, g geocode.Client) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		ai:       ai,
		qloo:     q,
		geocoder: g,
	}
}
