package pipeline

import (
	"strings"

	"github.com/adbuddy-ai/backend/internal/model"
)

// Intent query used by the competitor discovery pipeline.
const competitorQuery = "Find businesses similar to the given business"

// audienceParentList renders the audience parent types as prompt bullets.
func audienceParentList() string {
	var b strings.Builder
	for i, t := range model.AudienceParentTypes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("   - ")
		b.WriteString(t)
	}
	return b.String()
}

const plannerSystem = `You are AdBuddy's data agent with access to the Qloo API for taste-based insights.

### Business Information
Company Name: %s
Company Details: %s

Generate appropriate Qloo parameters for the insights API. Set every parameter you can determine directly from the business information and the query. Some parameters require additional resolution steps and must NOT be set directly:

1. Tag parameters (filter_tags, filter_exclude_tags, filter_results_tags, signal_interests_tags): add entries to tag_requests instead, each with the target field name, optional tag search filters, and a selection_goal describing which tags to pick from the search results.
2. Location parameters (filter_location, filter_location_lat, filter_location_lng, filter_exclude_location, signal_location): add entries to location_requests with the target field name and the place name to geocode.
3. Audience parameters (signal_demographics_audiences): add entries to audience_requests. Use these parent types to filter specific audience data:
%s

For the filter_type parameter: select the appropriate entity type based on the query context. Valid values: urn:entity:artist, urn:entity:book, urn:entity:brand, urn:entity:destination, urn:entity:movie, urn:entity:person, urn:entity:place, urn:entity:podcast, urn:entity:tv_show, urn:entity:videogame, urn:heatmap.

Never emit two requests naming the same target field.

Tag search filters: feature_typo_tolerance (bool), filter_parents_types (comma-separated entity types), filter_popularity_min/filter_popularity_max (0..1), filter_query (a SINGLE word or short phrase, no commas), page, take.
Audience search filters: filter_parents_types, filter_audience_types, filter_popularity_min/filter_popularity_max (0..1), page, take.

Return a single valid JSON object:
{
  "insight_params": {"filter_type": "...", "filter_popularity_min": 0.0, "signal_demographics_age": "...", ...},
  "tag_requests": [{"target_field": "filter_tags", "query": {"filter_query": "..."}, "selection_goal": "..."}],
  "audience_requests": [{"target_field": "signal_demographics_audiences", "query": {"filter_parents_types": "..."}, "selection_goal": "..."}],
  "location_requests": [{"target_field": "filter_location", "place_name": "..."}]
}

insight_params uses snake_case field names matching the parameter names above (filter_popularity_min, signal_demographics_age, signal_interests_tags_weight, bias_trends, diversify_by, take, sort_by, and so on). Omit any field you cannot determine.`

const tagSelectionSystem = `Extract relevant tag IDs from the Qloo API response that best match the query. Return a valid JSON object: {"tag_ids": ["...", "..."]}. Return only relevant tag IDs; return an empty list if nothing matches.`

const tagSelectionPrompt = `Query: %s

API Response (Tags):
%s

Return only the relevant tag IDs as a JSON list of strings under "tag_ids".`

const audienceSelectionSystem = `Extract relevant audience IDs from the Qloo API response that best match the query. Return a valid JSON object: {"audience_ids": ["...", "..."]}. Return only relevant audience IDs; return an empty list if nothing matches.`

const audienceSelectionPrompt = `Query: %s

API Response (Audiences):
%s

Return only the relevant audience IDs as a JSON list of strings under "audience_ids".`

const initialPlanSystem = `You are an advertising and marketing specialist. Based on the conversation transcript between a user and an AI, you need to produce two key outputs:

1. A concise, memorable title for an ad campaign that captures what the business does and their advertising goals. The title should be clear, professional, reflect the business identity, and be under 50 characters.

2. A data query that will help find relevant audience data and business insights through the Qloo API. The query should be concise but capture the key aspects of the business, target audience, and marketing goals.

Use the company information and conversation transcript to inform both outputs.

Return a single valid JSON object: {"title": "...", "insight_query": "..."}`

const initialPlanPrompt = `Company Name: %s

Company Details: %s

Conversation Transcript:
%s

Generate both a campaign title and an insight query for finding relevant audience data.`

const campaignSystem = `You are an expert advertising strategist. Based on the provided company information, conversation transcript, and audience data, create a comprehensive, detailed campaign plan.

Your output must be a single valid JSON object with this shape:
{
  "ad_campaign": {
    "name": "...",
    "objective": "BRAND_AWARENESS|REACH|TRAFFIC|ENGAGEMENT|APP_INSTALLS|VIDEO_VIEWS|LEAD_GENERATION|MESSAGES|CONVERSIONS|CATALOG_SALES|STORE_TRAFFIC|COMMUNITY_INTERACTION",
    "status": "PAUSED",
    "ad_sets": [{
      "name": "...",
      "status": "PAUSED",
      "budget": {"mode": "BUDGET_MODE_DAY|BUDGET_MODE_TOTAL|BUDGET_MODE_INFINITE", "amount": 0.0, "currency": "USD"},
      "targeting": {"locations": [], "age_min": 18, "age_max": 65, "genders": [], "languages": [], "interests": [], "custom_audiences": []},
      "placements": {"automatic": true, "instagram_positions": [], "tiktok_placements": []},
      "optimization_goal": "...",
      "creatives": [{"ad_format": "IMAGE|VIDEO|CAROUSEL", "primary_text": "...", "headline": "...", "description": "..."}]
    }],
    "campaign_budget": {"mode": "...", "amount": 0.0, "currency": "USD"}
  },
  "campaign_goal": "...",
  "target_audience_analysis": "...",
  "creative_ideas": [{"title": "...", "description": "...", "target_audience": "...", "platforms": []}],
  "todo_list": [{"task": "...", "priority": "high|medium|low", "notes": "..."}],
  "kpis": ["..."],
  "budget_allocation_strategy": "..."
}

Be practical, strategic, and focus on micro-targeting different audience segments with tailored content. Include specific ad formats, copy ideas, and creative directions.`

const campaignPrompt = `Company Name: %s
Campaign Title: %s

Company Details: %s

Audience Data & Insights:
%s

Conversation Transcript:
%s

Generate a complete enhanced campaign plan.`
