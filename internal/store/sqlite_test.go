package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adbuddy-ai/backend/internal/config"
	"github.com/adbuddy-ai/backend/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestCompetitorRunLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run := &model.CompetitorRun{
		Company: model.Company{Name: "Bistro Delights", Details: "Italian restaurant"},
		Status:  model.RunStatusQueued,
	}
	require.NoError(t, st.CreateCompetitorRun(ctx, run))
	require.NotEmpty(t, run.ID)

	run.Status = model.RunStatusProcessed
	run.Competitors = []model.Entity{
		{"name": "Pasta Palace", "entity_id": "e1"},
	}
	require.NoError(t, st.UpdateCompetitorRun(ctx, run))

	got, err := st.GetCompetitorRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, "Bistro Delights", got.Company.Name)
	assert.Equal(t, model.RunStatusProcessed, got.Status)
	require.Len(t, got.Competitors, 1)
	assert.Equal(t, "Pasta Palace", got.Competitors[0].Name())
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestCompetitorRun_ErrorState(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run := &model.CompetitorRun{
		Company: model.Company{Name: "Acme"},
		Status:  model.RunStatusProcessing,
	}
	require.NoError(t, st.CreateCompetitorRun(ctx, run))

	run.Status = model.RunStatusError
	run.ErrorMessage = "planner returned invalid JSON"
	require.NoError(t, st.UpdateCompetitorRun(ctx, run))

	got, err := st.GetCompetitorRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusError, got.Status)
	assert.Equal(t, "planner returned invalid JSON", got.ErrorMessage)
}

func TestCampaignRunLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run := &model.CampaignRun{
		Company: model.Company{Name: "Crumb & Crust"},
		Status:  model.RunStatusQueued,
		Transcript: model.Transcript{
			{Sender: "user", Text: "We want weekend foot traffic."},
		},
	}
	require.NoError(t, st.CreateCampaignRun(ctx, run))

	run.Status = model.RunStatusProcessed
	run.Title = "Weekend Bakery Buzz"
	run.Plan = &model.CampaignPlan{
		AdCampaign: model.AdCampaign{
			Name:      "Weekend Bakery Buzz",
			Objective: model.ObjectiveStoreTraffic,
			AdSets: []model.AdSet{{
				Name:      "Local Foodies",
				Budget:    model.Budget{Mode: model.BudgetModeDaily, Amount: 40, Currency: "USD"},
				Creatives: []model.Creative{{AdFormat: "IMAGE", PrimaryText: "Fresh."}},
			}},
		},
		CampaignGoal: "Drive weekend visits",
	}
	require.NoError(t, st.UpdateCampaignRun(ctx, run))

	got, err := st.GetCampaignRun(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, "Weekend Bakery Buzz", got.Title)
	require.NotNil(t, got.Plan)
	assert.Equal(t, model.ObjectiveStoreTraffic, got.Plan.AdCampaign.Objective)
	require.Len(t, got.Transcript, 1)
	assert.Equal(t, "user", got.Transcript[0].Sender)
}

func TestGetRun_NotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.GetCompetitorRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.GetCampaignRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRun_NotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	err := st.UpdateCompetitorRun(ctx, &model.CompetitorRun{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, st.CreateCompetitorRun(ctx, &model.CompetitorRun{
			Company: model.Company{Name: name},
			Status:  model.RunStatusQueued,
		}))
	}

	runs, err := st.ListCompetitorRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	campaigns, err := st.ListCampaignRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, campaigns)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(config.StoreConfig{Driver: "oracle"})
	require.Error(t, err)
}
