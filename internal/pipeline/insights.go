package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/adbuddy-ai/backend/internal/model"
)

// Insights runs the recommendation query with the merged parameter set.
// Any failure degrades to an empty result list: a run with no
// recommendations is still a usable run.
func (p *Pipeline) Insights(ctx context.Context, params *model.InsightParams) []model.Entity {
	resp, err := p.qloo.Insights(ctx, params.ToAPIParams())
	if err != nil {
		zap.L().Warn("insights query failed", zap.Error(err))
		return []model.Entity{}
	}

	entities := make([]model.Entity, len(resp.Results.Entities))
	for i, e := range resp.Results.Entities {
		entities[i] = model.Entity(e)
	}

	zap.L().Info("insights fetched", zap.Int("entities", len(entities)))
	return entities
}
