package pipeline

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/adbuddy-ai/backend/pkg/anthropic"
	"github.com/adbuddy-ai/backend/pkg/geocode"
	"github.com/adbuddy-ai/backend/pkg/qloo"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Qloo Mock ---

type mockQlooClient struct {
	mock.Mock
}

func (m *mockQlooClient) Insights(ctx context.Context, params map[string]string) (*qloo.InsightsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qloo.InsightsResponse), args.Error(1)
}

func (m *mockQlooClient) SearchTags(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockQlooClient) SearchAudiences(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// --- Geocode Mock ---

type mockGeocodeClient struct {
	mock.Mock
}

func (m *mockGeocodeClient) Geocode(ctx context.Context, place string) (*geocode.Result, error) {
	args := m.Called(ctx, place)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Result), args.Error(1)
}

// textResponse wraps a JSON payload the way the model returns it.
func textResponse(body string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: body}},
		StopReason: "end_turn",
	}
}
