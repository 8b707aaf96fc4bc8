package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Parent audience types the planner may use to narrow audience searches.
var AudienceParentTypes = []string{
	"urn:audience:communities",
	"urn:audience:global_issues",
	"urn:audience:hobbies_and_interests",
	"urn:audience:investing_interests",
	"urn:audience:leisure",
	"urn:audience:life_stage",
	"urn:audience:lifestyle_preferences_beliefs",
	"urn:audience:political_preferences",
	"urn:audience:professional_area",
	"urn:audience:spending_habits",
}

// TagSearchQuery filters a tag vocabulary search. All fields pass through
// verbatim to the tag search endpoint.
type TagSearchQuery struct {
	FeatureTypoTolerance bool     `json:"feature_typo_tolerance,omitempty"`
	FilterResultsTags    []string `json:"filter_results_tags,omitempty"`
	FilterParentsTypes   string   `json:"filter_parents_types,omitempty"`
	FilterPopularityMin  *float64 `json:"filter_popularity_min,omitempty"`
	FilterPopularityMax  *float64 `json:"filter_popularity_max,omitempty"`
	FilterQuery          string   `json:"filter_query,omitempty"`
	Page                 *int     `json:"page,omitempty"`
	Take                 *int     `json:"take,omitempty"`
}

// ToAPIParams serializes the query to tag-search wire parameters.
func (q *TagSearchQuery) ToAPIParams() map[string]string {
	params := make(map[string]string)
	if q == nil {
		return params
	}
	if q.FeatureTypoTolerance {
		params["feature.typo_tolerance"] = "true"
	}
	if len(q.FilterResultsTags) > 0 {
		params["filter.results.tags"] = strings.Join(q.FilterResultsTags, ",")
	}
	if q.FilterParentsTypes != "" {
		params["filter.parents.types"] = q.FilterParentsTypes
	}
	if q.FilterPopularityMin != nil {
		params["filter.popularity.min"] = strconv.FormatFloat(*q.FilterPopularityMin, 'f', -1, 64)
	}
	if q.FilterPopularityMax != nil {
		params["filter.popularity.max"] = strconv.FormatFloat(*q.FilterPopularityMax, 'f', -1, 64)
	}
	if q.FilterQuery != "" {
		params["filter.query"] = q.FilterQuery
	}
	if q.Page != nil {
		params["page"] = strconv.Itoa(*q.Page)
	}
	if q.Take != nil {
		params["take"] = strconv.Itoa(*q.Take)
	}
	return params
}

// AudienceSearchQuery filters an audience-type search.
type AudienceSearchQuery struct {
	FilterParentsTypes     string   `json:"filter_parents_types,omitempty"`
	FilterResultsAudiences []string `json:"filter_results_audiences,omitempty"`
	FilterAudienceTypes    []string `json:"filter_audience_types,omitempty"`
	FilterPopularityMin    *float64 `json:"filter_popularity_min,omitempty"`
	FilterPopularityMax    *float64 `json:"filter_popularity_max,omitempty"`
	Page                   *int     `json:"page,omitempty"`
	Take                   *int     `json:"take,omitempty"`
}

// ToAPIParams serializes the query to audience-search wire parameters.
func (q *AudienceSearchQuery) ToAPIParams() map[string]string {
	params := make(map[string]string)
	if q == nil {
		return params
	}
	if q.FilterParentsTypes != "" {
		params["filter.parents.types"] = q.FilterParentsTypes
	}
	if len(q.FilterResultsAudiences) > 0 {
		params["filter.results.audiences"] = strings.Join(q.FilterResultsAudiences, ",")
	}
	if len(q.FilterAudienceTypes) > 0 {
		params["filter.audience.types"] = strings.Join(q.FilterAudienceTypes, ",")
	}
	if q.FilterPopularityMin != nil {
		params["filter.popularity.min"] = strconv.FormatFloat(*q.FilterPopularityMin, 'f', -1, 64)
	}
	if q.FilterPopularityMax != nil {
		params["filter.popularity.max"] = strconv.FormatFloat(*q.FilterPopularityMax, 'f', -1, 64)
	}
	if q.Page != nil {
		params["page"] = strconv.Itoa(*q.Page)
	}
	if q.Take != nil {
		params["take"] = strconv.Itoa(*q.Take)
	}
	return params
}

// TagRequest asks the orchestrator to search the tag vocabulary and write
// the selected tag IDs to TargetField on the parameter set.
type TagRequest struct {
	TargetField   string          `json:"target_field"`
	Query         *TagSearchQuery `json:"query,omitempty"`
	SelectionGoal string          `json:"selection_goal"`
}

// AudienceRequest asks the orchestrator to search audience types and write
// the selected audience IDs to TargetField.
type AudienceRequest struct {
	TargetField   string               `json:"target_field"`
	Query         *AudienceSearchQuery `json:"query,omitempty"`
	SelectionGoal string               `json:"selection_goal"`
}

// LocationRequest asks the orchestrator to geocode PlaceName and write the
// coordinates (or a WKT point) to TargetField.
type LocationRequest struct {
	TargetField string `json:"target_field"`
	PlaceName   string `json:"place_name"`
}

// PlannerOutput is the structured result of the planner stage: a draft
// parameter set plus the follow-up resolution requests for fields whose
// values live in externally defined vocabularies.
type PlannerOutput struct {
	Params           *InsightParams    `json:"insight_params"`
	TagRequests      []TagRequest      `json:"tag_requests,omitempty"`
	AudienceRequests []AudienceRequest `json:"audience_requests,omitempty"`
	LocationRequests []LocationRequest `json:"location_requests,omitempty"`
}

// Validate checks the planner output before any resolution is dispatched.
// Two requests naming the same target field would race to a last-writer-wins
// merge, so duplicate targets are rejected here rather than trusted to
// dispatch order.
func (o *PlannerOutput) Validate() error {
	if o.Params == nil {
		return eris.New("planner: output contains no parameter set")
	}

	seen := make(map[string]string)
	claim := func(kind, field string) error {
		if field == "" {
			return eris.Errorf("planner: %s request with empty target field", kind)
		}
		if prev, ok := seen[field]; ok {
			return eris.Errorf("planner: duplicate target field %q (%s and %s requests)", field, prev, kind)
		}
		seen[field] = kind
		return nil
	}

	for _, r := range o.TagRequests {
		if err := claim("tag", r.TargetField); err != nil {
			return err
		}
	}
	for _, r := range o.AudienceRequests {
		if err := claim("audience", r.TargetField); err != nil {
			return err
		}
	}
	for _, r := range o.LocationRequests {
		if err := claim("location", r.TargetField); err != nil {
			return err
		}
	}
	return nil
}
