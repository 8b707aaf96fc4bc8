package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adbuddy-ai/backend/internal/model"
)

// Plan asks the planner model for a draft parameter set plus the resolution
// requests for vocabulary-bound fields. A failed or invalid plan aborts the
// run: without parameters there is nothing downstream to query.
func (p *Pipeline) Plan(ctx context.Context, company model.Company, query string) (*model.PlannerOutput, error) {
	system := fmt.Sprintf(plannerSystem, company.Name, company.Details, audienceParentList())

	var out model.PlannerOutput
	if err := p.generateJSON(ctx, "planner", system, query, p.cfg.PlannerTemperature, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	zap.L().Info("plan drafted",
		zap.String("company", company.Name),
		zap.Int("tag_requests", len(out.TagRequests)),
		zap.Int("audience_requests", len(out.AudienceRequests)),
		zap.Int("location_requests", len(out.LocationRequests)),
	)
	return &out, nil
}
