package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adbuddy-ai/backend/internal/config"
	"github.com/adbuddy-ai/backend/internal/model"
	"github.com/adbuddy-ai/backend/pkg/anthropic"
	"github.com/adbuddy-ai/backend/pkg/geocode"
	"github.com/adbuddy-ai/backend/pkg/qloo"
)

func testConfig() config.AnthropicConfig {
	return config.AnthropicConfig{
		Model:               "claude-sonnet-4-5-20250929",
		MaxTokens:           4096,
		PlannerTemperature:  0.1,
		CreativeTemperature: 0.2,
	}
}

func newTestPipeline(ai *mockAnthropicClient, q *mockQlooClient, g *mockGeocodeClient) *Pipeline {
	return New(testConfig(), ai, q, g)
}

// reqWith matches a generation request whose system prompt contains marker
// and whose temperature equals temp.
func reqWith(marker string, temp float64) any {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return strings.Contains(req.System, marker) &&
			req.Temperature != nil && *req.Temperature == temp
	})
}

func TestFindCompetitors_FullFlow(t *testing.T) {
	ctx := context.Background()
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	company := model.Company{Name: "Bistro Delights", Details: "Italian restaurant chain in San Francisco"}

	// Planner drafts brand params with take=50 and asks for cuisine tags.
	ai.On("CreateMessage", mock.Anything, reqWith("data agent", 0.1)).
		Return(textResponse(`{
			"insight_params": {"filter_type": "urn:entity:brand", "filter_popularity_min": 0.4, "take": 50},
			"tag_requests": [{"target_field": "filter_tags", "query": {"filter_query": "italian"}, "selection_goal": "italian cuisine tags"}]
		}`), nil).Once()

	q.On("SearchTags", mock.Anything, mock.MatchedBy(func(params map[string]string) bool {
		return params["filter.query"] == "italian"
	})).Return(json.RawMessage(`{"results":{"tags":[{"id":"urn:tag:cuisine:italian"},{"id":"urn:tag:cuisine:pizza"}]}}`), nil).Once()

	// Selection returns duplicates; the merge must dedup them.
	ai.On("CreateMessage", mock.Anything, reqWith("tag IDs", 0.1)).
		Return(textResponse(`{"tag_ids": ["urn:tag:cuisine:pizza", "urn:tag:cuisine:italian", "urn:tag:cuisine:italian"]}`), nil).Once()

	q.On("Insights", mock.Anything, mock.MatchedBy(func(params map[string]string) bool {
		return params["filter.type"] == "urn:entity:brand" &&
			params["filter.tags"] == "urn:tag:cuisine:italian,urn:tag:cuisine:pizza" &&
			params["take"] == "25"
	})).Return(&qloo.InsightsResponse{
		Success: true,
		Results: qloo.InsightsResults{Entities: []map[string]any{
			{"name": "Pasta Palace", "entity_id": "e1"},
			{"name": "Trattoria Roma", "entity_id": "e2"},
		}},
	}, nil).Once()

	p := newTestPipeline(ai, q, g)
	competitors, err := p.FindCompetitors(ctx, company)
	require.NoError(t, err)

	require.Len(t, competitors, 2)
	assert.Equal(t, "Pasta Palace", competitors[0].Name())
	assert.Equal(t, "e2", competitors[1].ID())

	ai.AssertExpectations(t)
	q.AssertExpectations(t)
	g.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestFindCompetitors_EmptyCompanyName(t *testing.T) {
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	p := newTestPipeline(ai, q, g)
	_, err := p.FindCompetitors(context.Background(), model.Company{})

	require.Error(t, err)
	ai.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestFindCompetitors_PlannerFailureStopsRun(t *testing.T) {
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("model overloaded")).Once()

	p := newTestPipeline(ai, q, g)
	_, err := p.FindCompetitors(context.Background(), model.Company{Name: "Acme"})

	require.Error(t, err)
	ai.AssertNumberOfCalls(t, "CreateMessage", 1)
	q.AssertNotCalled(t, "SearchTags", mock.Anything, mock.Anything)
	q.AssertNotCalled(t, "SearchAudiences", mock.Anything, mock.Anything)
	q.AssertNotCalled(t, "Insights", mock.Anything, mock.Anything)
	g.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestFindCompetitors_DuplicateTargetRejected(t *testing.T) {
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{
			"insight_params": {"filter_type": "urn:entity:brand"},
			"tag_requests": [
				{"target_field": "filter_tags", "query": {"filter_query": "coffee"}, "selection_goal": "a"},
				{"target_field": "filter_tags", "query": {"filter_query": "espresso"}, "selection_goal": "b"}
			]
		}`), nil).Once()

	p := newTestPipeline(ai, q, g)
	_, err := p.FindCompetitors(context.Background(), model.Company{Name: "Acme"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate target field")
	q.AssertNotCalled(t, "SearchTags", mock.Anything, mock.Anything)
	q.AssertNotCalled(t, "Insights", mock.Anything, mock.Anything)
}

func TestResolve_LocationWKT(t *testing.T) {
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	g.On("Geocode", mock.Anything, "San Francisco").
		Return(&geocode.Result{Latitude: 37.77, Longitude: -122.41}, nil).Once()

	p := newTestPipeline(ai, q, g)
	params := p.Resolve(context.Background(), &model.PlannerOutput{
		Params: &model.InsightParams{},
		LocationRequests: []model.LocationRequest{
			{TargetField: "filter_location", PlaceName: "San Francisco"},
		},
	})

	require.NotNil(t, params.FilterLocation)
	assert.Equal(t, "POINT(-122.41 37.77)", *params.FilterLocation)
	g.AssertExpectations(t)
}

func TestResolve_LatLngFields(t *testing.T) {
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	g.On("Geocode", mock.Anything, "Austin, TX").
		Return(&geocode.Result{Latitude: 30.27, Longitude: -97.74}, nil).Twice()

	p := newTestPipeline(ai, q, g)
	params := p.Resolve(context.Background(), &model.PlannerOutput{
		Params: &model.InsightParams{},
		LocationRequests: []model.LocationRequest{
			{TargetField: "filter_location_lat", PlaceName: "Austin, TX"},
			{TargetField: "filter_location_lng", PlaceName: "Austin, TX"},
		},
	})

	require.NotNil(t, params.FilterLocationLat)
	require.NotNil(t, params.FilterLocationLng)
	assert.Equal(t, 30.27, *params.FilterLocationLat)
	assert.Equal(t, -97.74, *params.FilterLocationLng)
}

func TestResolve_ForcesTake(t *testing.T) {
	take := 100
	p := newTestPipeline(&mockAnthropicClient{}, &mockQlooClient{}, &mockGeocodeClient{})

	params := p.Resolve(context.Background(), &model.PlannerOutput{
		Params: &model.InsightParams{Take: &take},
	})

	require.NotNil(t, params.Take)
	assert.Equal(t, 25, *params.Take)
}

func TestResolve_PartialFailureDegrades(t *testing.T) {
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	// Tag search fails; audience resolution succeeds.
	q.On("SearchTags", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream 500")).Once()
	q.On("SearchAudiences", mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"results":{"audiences":[{"id":"urn:audience:leisure:foodies"}]}}`), nil).Once()
	ai.On("CreateMessage", mock.Anything, reqWith("audience IDs", 0.1)).
		Return(textResponse(`{"audience_ids": ["urn:audience:leisure:foodies"]}`), nil).Once()

	p := newTestPipeline(ai, q, g)
	params := p.Resolve(context.Background(), &model.PlannerOutput{
		Params: &model.InsightParams{},
		TagRequests: []model.TagRequest{
			{TargetField: "filter_tags", SelectionGoal: "tags"},
		},
		AudienceRequests: []model.AudienceRequest{
			{TargetField: "signal_demographics_audiences", SelectionGoal: "audiences"},
		},
	})

	assert.Empty(t, params.FilterTags, "failed resolution leaves the field unset")
	assert.Equal(t, []string{"urn:audience:leisure:foodies"}, params.SignalDemographicsAudiences)
	q.AssertExpectations(t)
}

func TestResolve_GeocodeNoMatchDegrades(t *testing.T) {
	g := &mockGeocodeClient{}
	g.On("Geocode", mock.Anything, "Nowhereville").Return(nil, nil).Once()

	p := newTestPipeline(&mockAnthropicClient{}, &mockQlooClient{}, g)
	params := p.Resolve(context.Background(), &model.PlannerOutput{
		Params: &model.InsightParams{},
		LocationRequests: []model.LocationRequest{
			{TargetField: "filter_location", PlaceName: "Nowhereville"},
		},
	})

	assert.Nil(t, params.FilterLocation)
}

func TestResolve_DropsMalformedWKT(t *testing.T) {
	bad := "POINT(not a number)"
	urn := "urn:locality:san-francisco"
	p := newTestPipeline(&mockAnthropicClient{}, &mockQlooClient{}, &mockGeocodeClient{})

	params := p.Resolve(context.Background(), &model.PlannerOutput{
		Params: &model.InsightParams{
			FilterLocation: &bad,
			SignalLocation: &urn,
		},
	})

	assert.Nil(t, params.FilterLocation, "malformed WKT must not reach the wire")
	require.NotNil(t, params.SignalLocation)
	assert.Equal(t, urn, *params.SignalLocation, "locality URNs pass through")
}

func TestSelectTagIDs_EmptyGoalSkipsModel(t *testing.T) {
	ai := &mockAnthropicClient{}
	p := newTestPipeline(ai, &mockQlooClient{}, &mockGeocodeClient{})

	_, err := p.selectTagIDs(context.Background(), json.RawMessage(`{"results":{}}`), "")
	require.Error(t, err)

	_, err = p.selectTagIDs(context.Background(), json.RawMessage(`{}`), "goal")
	require.Error(t, err)

	ai.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestInsights_FailureReturnsEmpty(t *testing.T) {
	q := &mockQlooClient{}
	q.On("Insights", mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout")).Once()

	p := newTestPipeline(&mockAnthropicClient{}, q, &mockGeocodeClient{})
	got := p.Insights(context.Background(), &model.InsightParams{})

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateCampaign_FullFlow(t *testing.T) {
	ctx := context.Background()
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}
	g := &mockGeocodeClient{}

	company := model.Company{Name: "Crumb & Crust", Details: "Artisan bakery"}
	transcript := model.Transcript{
		{Sender: "user", Text: "We want more weekend foot traffic."},
	}

	ai.On("CreateMessage", mock.Anything, reqWith("marketing specialist", 0.2)).
		Return(textResponse(`{"title": "Weekend Bakery Buzz", "insight_query": "audiences for artisan bakeries"}`), nil).Once()

	ai.On("CreateMessage", mock.Anything, reqWith("data agent", 0.1)).
		Return(textResponse(`{"insight_params": {"filter_type": "urn:entity:place"}}`), nil).Once()

	q.On("Insights", mock.Anything, mock.Anything).
		Return(&qloo.InsightsResponse{
			Success: true,
			Results: qloo.InsightsResults{Entities: []map[string]any{
				{"name": "Flour Power", "entity_id": "e9"},
			}},
		}, nil).Once()

	// The generation prompt must carry the insight data and the transcript.
	campaignJSON := `{
		"ad_campaign": {
			"name": "Weekend Bakery Buzz",
			"objective": "STORE_TRAFFIC",
			"status": "PAUSED",
			"ad_sets": [{
				"name": "Local Foodies",
				"status": "PAUSED",
				"budget": {"mode": "BUDGET_MODE_DAY", "amount": 40, "currency": "USD"},
				"creatives": [{"ad_format": "IMAGE", "primary_text": "Fresh out of the oven."}]
			}]
		},
		"campaign_goal": "Drive weekend store visits",
		"kpis": ["store visits"]
	}`
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		if !strings.Contains(req.System, "advertising strategist") {
			return false
		}
		prompt := req.Messages[0].Content
		return strings.Contains(prompt, "Flour Power") &&
			strings.Contains(prompt, "weekend foot traffic")
	})).Return(textResponse("```json\n"+campaignJSON+"\n```"), nil).Once()

	p := newTestPipeline(ai, q, g)
	result, err := p.GenerateCampaign(ctx, company, transcript)
	require.NoError(t, err)

	assert.Equal(t, "Weekend Bakery Buzz", result.Title)
	assert.Equal(t, "audiences for artisan bakeries", result.InsightQuery)
	require.NotNil(t, result.Plan)
	assert.Equal(t, model.ObjectiveStoreTraffic, result.Plan.AdCampaign.Objective)
	require.Len(t, result.Insights, 1)

	ai.AssertExpectations(t)
	q.AssertExpectations(t)
}

func TestGenerateCampaign_InvalidPlanFails(t *testing.T) {
	ai := &mockAnthropicClient{}
	q := &mockQlooClient{}

	ai.On("CreateMessage", mock.Anything, reqWith("marketing specialist", 0.2)).
		Return(textResponse(`{"title": "T", "insight_query": "q"}`), nil).Once()
	ai.On("CreateMessage", mock.Anything, reqWith("data agent", 0.1)).
		Return(textResponse(`{"insight_params": {}}`), nil).Once()
	q.On("Insights", mock.Anything, mock.Anything).
		Return(&qloo.InsightsResponse{Success: true}, nil).Once()

	// Plan with no ad sets fails validation.
	ai.On("CreateMessage", mock.Anything, reqWith("advertising strategist", 0.2)).
		Return(textResponse(`{"ad_campaign": {"name": "X", "objective": "REACH"}, "campaign_goal": "g"}`), nil).Once()

	p := newTestPipeline(ai, q, &mockGeocodeClient{})
	_, err := p.GenerateCampaign(context.Background(), model.Company{Name: "Acme"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ad sets")
}

func TestGenerateCampaign_InitialPlanMissingFields(t *testing.T) {
	ai := &mockAnthropicClient{}

	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"title": "", "insight_query": ""}`), nil).Once()

	p := newTestPipeline(ai, &mockQlooClient{}, &mockGeocodeClient{})
	_, err := p.GenerateCampaign(context.Background(), model.Company{Name: "Acme"}, nil)

	require.Error(t, err)
	ai.AssertNumberOfCalls(t, "CreateMessage", 1)
}
