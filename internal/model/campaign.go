package model

import (
	"github.com/rotisserie/eris"
)

// CampaignObjective is the primary objective of an ad campaign.
type CampaignObjective string

const (
	ObjectiveBrandAwareness       CampaignObjective = "BRAND_AWARENESS"
	ObjectiveReach                CampaignObjective = "REACH"
	ObjectiveTraffic              CampaignObjective = "TRAFFIC"
	ObjectiveEngagement           CampaignObjective = "ENGAGEMENT"
	ObjectiveAppInstalls          CampaignObjective = "APP_INSTALLS"
	ObjectiveVideoViews           CampaignObjective = "VIDEO_VIEWS"
	ObjectiveLeadGeneration       CampaignObjective = "LEAD_GENERATION"
	ObjectiveMessages             CampaignObjective = "MESSAGES"
	ObjectiveConversions          CampaignObjective = "CONVERSIONS"
	ObjectiveCatalogSales         CampaignObjective = "CATALOG_SALES"
	ObjectiveStoreTraffic         CampaignObjective = "STORE_TRAFFIC"
	ObjectiveCommunityInteraction CampaignObjective = "COMMUNITY_INTERACTION"
)

// Valid reports whether the objective is one of the known values.
func (o CampaignObjective) Valid() bool {
	switch o {
	case ObjectiveBrandAwareness, ObjectiveReach, ObjectiveTraffic,
		ObjectiveEngagement, ObjectiveAppInstalls, ObjectiveVideoViews,
		ObjectiveLeadGeneration, ObjectiveMessages, ObjectiveConversions,
		ObjectiveCatalogSales, ObjectiveStoreTraffic, ObjectiveCommunityInteraction:
		return true
	}
	return false
}

// AdStatus is the lifecycle status of a campaign, ad set, or ad.
type AdStatus string

const (
	AdStatusActive   AdStatus = "ACTIVE"
	AdStatusPaused   AdStatus = "PAUSED"
	AdStatusArchived AdStatus = "ARCHIVED"
	AdStatusDeleted  AdStatus = "DELETED"
)

// BudgetMode distinguishes daily, lifetime, and uncapped budgets.
type BudgetMode string

const (
	BudgetModeDaily    BudgetMode = "BUDGET_MODE_DAY"
	BudgetModeLifetime BudgetMode = "BUDGET_MODE_TOTAL"
	BudgetModeInfinite BudgetMode = "BUDGET_MODE_INFINITE"
)

// Budget is a campaign- or ad-set-level budget.
type Budget struct {
	Mode     BudgetMode `json:"mode"`
	Amount   float64    `json:"amount"`
	Currency string     `json:"currency"`
}

// Targeting is the audience definition of an ad set.
type Targeting struct {
	Locations       []string `json:"locations,omitempty"`
	AgeMin          *int     `json:"age_min,omitempty"`
	AgeMax          *int     `json:"age_max,omitempty"`
	Genders         []string `json:"genders,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	CustomAudiences []string `json:"custom_audiences,omitempty"`
}

// Placement defines where ads are shown.
type Placement struct {
	Automatic          bool     `json:"automatic"`
	InstagramPositions []string `json:"instagram_positions,omitempty"`
	TikTokPlacements   []string `json:"tiktok_placements,omitempty"`
}

// Creative is the content of a single ad.
type Creative struct {
	AdFormat    string `json:"ad_format"`
	PrimaryText string `json:"primary_text"`
	Headline    string `json:"headline,omitempty"`
	Description string `json:"description,omitempty"`
}

// AdSet is an ad set (Instagram) or ad group (TikTok).
type AdSet struct {
	Name             string     `json:"name"`
	Status           AdStatus   `json:"status"`
	StartTime        string     `json:"start_time,omitempty"`
	EndTime          string     `json:"end_time,omitempty"`
	Budget           Budget     `json:"budget"`
	Targeting        Targeting  `json:"targeting"`
	Placements       Placement  `json:"placements"`
	OptimizationGoal string     `json:"optimization_goal"`
	Creatives        []Creative `json:"creatives"`
}

// AdCampaign is a structured multi-platform ad campaign definition.
type AdCampaign struct {
	Name                string            `json:"name"`
	Objective           CampaignObjective `json:"objective"`
	Status              AdStatus          `json:"status"`
	AdSets              []AdSet           `json:"ad_sets"`
	CampaignBudget      *Budget           `json:"campaign_budget,omitempty"`
	SpecialAdCategory   string            `json:"special_ad_category,omitempty"`
	PlatformSpecificIDs map[string]string `json:"platform_specific_ids,omitempty"`
}

// CreativeIdea is a campaign creative direction.
type CreativeIdea struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	TargetAudience string   `json:"target_audience"`
	Platforms      []string `json:"platforms"`
}

// TodoItem is an action item for implementing the campaign.
type TodoItem struct {
	Task     string `json:"task"`
	Priority string `json:"priority"`
	Notes    string `json:"notes,omitempty"`
}

// CampaignPlan is the full generated campaign artifact.
type CampaignPlan struct {
	AdCampaign               AdCampaign     `json:"ad_campaign"`
	CampaignGoal             string         `json:"campaign_goal"`
	TargetAudienceAnalysis   string         `json:"target_audience_analysis"`
	CreativeIdeas            []CreativeIdea `json:"creative_ideas"`
	TodoList                 []TodoItem     `json:"todo_list"`
	KPIs                     []string       `json:"kpis"`
	BudgetAllocationStrategy string         `json:"budget_allocation_strategy"`
}

// Validate checks the generated plan against the artifact contract. A plan
// that fails here is treated the same as a failed generation call.
func (p *CampaignPlan) Validate() error {
	if p.AdCampaign.Name == "" {
		return eris.New("campaign: plan missing campaign name")
	}
	if !p.AdCampaign.Objective.Valid() {
		return eris.Errorf("campaign: unknown objective %q", p.AdCampaign.Objective)
	}
	if len(p.AdCampaign.AdSets) == 0 {
		return eris.New("campaign: plan has no ad sets")
	}
	for i, as := range p.AdCampaign.AdSets {
		if as.Name == "" {
			return eris.Errorf("campaign: ad set %d missing name", i)
		}
		if as.Budget.Amount <= 0 {
			return eris.Errorf("campaign: ad set %q has non-positive budget", as.Name)
		}
		if len(as.Creatives) == 0 {
			return eris.Errorf("campaign: ad set %q has no creatives", as.Name)
		}
	}
	if p.CampaignGoal == "" {
		return eris.New("campaign: plan missing campaign goal")
	}
	return nil
}

// InitialPlan is the first campaign-planning pass: a title for the campaign
// and the search intent used to drive the competitor pipeline.
type InitialPlan struct {
	Title        string `json:"title"`
	InsightQuery string `json:"insight_query"`
}
