package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagSearchQuery_ToAPIParams(t *testing.T) {
	q := &TagSearchQuery{
		FeatureTypoTolerance: true,
		FilterParentsTypes:   "urn:entity:place",
		FilterPopularityMin:  f64(0.3),
		FilterQuery:          "italian",
		Take:                 iptr(50),
	}

	got := q.ToAPIParams()

	assert.Equal(t, "true", got["feature.typo_tolerance"])
	assert.Equal(t, "urn:entity:place", got["filter.parents.types"])
	assert.Equal(t, "0.3", got["filter.popularity.min"])
	assert.Equal(t, "italian", got["filter.query"])
	assert.Equal(t, "50", got["take"])
}

func TestTagSearchQuery_ToAPIParams_Nil(t *testing.T) {
	var q *TagSearchQuery
	assert.Empty(t, q.ToAPIParams())
}

func TestAudienceSearchQuery_ToAPIParams(t *testing.T) {
	q := &AudienceSearchQuery{
		FilterParentsTypes:  "urn:audience:hobbies_and_interests",
		FilterAudienceTypes: []string{"urn:audience:leisure", "urn:audience:life_stage"},
		Page:                iptr(2),
	}

	got := q.ToAPIParams()

	assert.Equal(t, "urn:audience:hobbies_and_interests", got["filter.parents.types"])
	assert.Equal(t, "urn:audience:leisure,urn:audience:life_stage", got["filter.audience.types"])
	assert.Equal(t, "2", got["page"])
}

func TestPlannerOutput_Validate(t *testing.T) {
	out := &PlannerOutput{
		Params: &InsightParams{},
		TagRequests: []TagRequest{
			{TargetField: "filter_tags", SelectionGoal: "cuisine tags"},
		},
		AudienceRequests: []AudienceRequest{
			{TargetField: "signal_demographics_audiences", SelectionGoal: "foodies"},
		},
		LocationRequests: []LocationRequest{
			{TargetField: "filter_location", PlaceName: "San Francisco"},
		},
	}

	assert.NoError(t, out.Validate())
}

func TestPlannerOutput_Validate_NilParams(t *testing.T) {
	out := &PlannerOutput{}
	assert.Error(t, out.Validate())
}

func TestPlannerOutput_Validate_EmptyTargetField(t *testing.T) {
	out := &PlannerOutput{
		Params:      &InsightParams{},
		TagRequests: []TagRequest{{SelectionGoal: "goal"}},
	}
	assert.Error(t, out.Validate())
}

func TestPlannerOutput_Validate_DuplicateTargets(t *testing.T) {
	out := &PlannerOutput{
		Params: &InsightParams{},
		TagRequests: []TagRequest{
			{TargetField: "filter_tags", SelectionGoal: "a"},
			{TargetField: "filter_tags", SelectionGoal: "b"},
		},
	}

	err := out.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate target field")
}

func TestPlannerOutput_Validate_DuplicateAcrossKinds(t *testing.T) {
	out := &PlannerOutput{
		Params: &InsightParams{},
		TagRequests: []TagRequest{
			{TargetField: "filter_tags", SelectionGoal: "a"},
		},
		LocationRequests: []LocationRequest{
			{TargetField: "filter_tags", PlaceName: "Paris"},
		},
	}

	err := out.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate target field")
}
