package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/adbuddy-ai/backend/internal/model"
)

// CampaignResult is the output of a campaign generation run.
type CampaignResult struct {
	Title        string              `json:"title"`
	InsightQuery string              `json:"insight_query"`
	Insights     []model.Entity      `json:"insights,omitempty"`
	Plan         *model.CampaignPlan `json:"plan"`
}

// GenerateCampaign runs the three campaign stages: an initial planning pass
// that derives a campaign title and insight query from the conversation, an
// insight run with that query, and the final plan generation grounded on
// the insight data. Generation and validation failures are fatal; a run
// with no insight data still generates a plan.
func (p *Pipeline) GenerateCampaign(ctx context.Context, company model.Company, transcript model.Transcript) (*CampaignResult, error) {
	if company.Name == "" {
		return nil, eris.New("pipeline: company name is required")
	}

	initial, err := p.planInitial(ctx, company, transcript)
	if err != nil {
		return nil, err
	}
	zap.L().Info("campaign planned",
		zap.String("title", initial.Title),
		zap.String("insight_query", initial.InsightQuery),
	)

	insights, err := p.insightsForQuery(ctx, company, initial.InsightQuery)
	if err != nil {
		return nil, err
	}

	plan, err := p.generatePlan(ctx, company, initial.Title, transcript, insights)
	if err != nil {
		return nil, err
	}

	return &CampaignResult{
		Title:        initial.Title,
		InsightQuery: initial.InsightQuery,
		Insights:     insights,
		Plan:         plan,
	}, nil
}

func (p *Pipeline) planInitial(ctx context.Context, company model.Company, transcript model.Transcript) (*model.InitialPlan, error) {
	prompt := fmt.Sprintf(initialPlanPrompt, company.Name, company.Details, transcript.Render())

	var out model.InitialPlan
	if err := p.generateJSON(ctx, "initial-plan", initialPlanSystem, prompt, p.cfg.CreativeTemperature, &out); err != nil {
		return nil, err
	}
	if out.Title == "" || out.InsightQuery == "" {
		return nil, eris.New("pipeline: initial plan missing title or insight query")
	}
	return &out, nil
}

func (p *Pipeline) generatePlan(ctx context.Context, company model.Company, title string, transcript model.Transcript, insights []model.Entity) (*model.CampaignPlan, error) {
	insightJSON, err := json.MarshalIndent(insights, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal insight data")
	}

	// Insight JSON and transcript text are spliced in as format arguments,
	// never into the format string itself, so braces and verbs in the data
	// cannot be mistaken for template placeholders.
	prompt := fmt.Sprintf(campaignPrompt,
		company.Name,
		title,
		company.Details,
		string(insightJSON),
		transcript.Render(),
	)

	var plan model.CampaignPlan
	if err := p.generateJSON(ctx, "campaign", campaignSystem, prompt, p.cfg.CreativeTemperature, &plan); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}
