package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/adbuddy-ai/backend/internal/model"
)

// FindCompetitors runs the full discovery pipeline for a company: plan,
// resolve, query. The returned list may be empty when the recommendation
// query fails or matches nothing.
func (p *Pipeline) FindCompetitors(ctx context.Context, company model.Company) ([]model.Entity, error) {
	return p.insightsForQuery(ctx, company, competitorQuery)
}

// insightsForQuery is the shared plan-resolve-query sequence. Planning
// failures are fatal; resolution and query failures degrade.
func (p *Pipeline) insightsForQuery(ctx context.Context, company model.Company, query string) ([]model.Entity, error) {
	if company.Name == "" {
		return nil, eris.New("pipeline: company name is required")
	}

	plan, err := p.Plan(ctx, company, query)
	if err != nil {
		return nil, err
	}

	params := p.Resolve(ctx, plan)
	return p.Insights(ctx, params), nil
}
