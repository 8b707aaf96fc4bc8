package model

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Entity types accepted by the insights API filter.type parameter.
const (
	EntityTypeArtist      = "urn:entity:artist"
	EntityTypeBook        = "urn:entity:book"
	EntityTypeBrand       = "urn:entity:brand"
	EntityTypeDestination = "urn:entity:destination"
	EntityTypeMovie       = "urn:entity:movie"
	EntityTypePerson      = "urn:entity:person"
	EntityTypePlace       = "urn:entity:place"
	EntityTypePodcast     = "urn:entity:podcast"
	EntityTypeTVShow      = "urn:entity:tv_show"
	EntityTypeVideogame   = "urn:entity:videogame"
	EntityTypeHeatmap     = "urn:heatmap"
)

// InsightParams is the full parameter set for a taste-graph insights query.
// Pointer and slice fields are optional; unset fields are omitted from the
// serialized form. The planner fills what it can determine directly from
// text; tag/audience/location fields are populated later by the resolution
// orchestrator, after which the set is treated as immutable.
type InsightParams struct {
	// Filter parameters
	FilterType          string   `json:"filter_type,omitempty"`
	FilterTags          []string `json:"filter_tags,omitempty"`
	OperatorFilterTags  *string  `json:"operator_filter_tags,omitempty"`
	FilterExcludeTags   []string `json:"filter_exclude_tags,omitempty"`
	OperatorExcludeTags *string  `json:"operator_exclude_tags,omitempty"`

	// Popularity
	FilterPopularityMin *float64 `json:"filter_popularity_min,omitempty"`
	FilterPopularityMax *float64 `json:"filter_popularity_max,omitempty"`

	// Location
	FilterLocation               *string  `json:"filter_location,omitempty"`
	FilterLocationLat            *float64 `json:"filter_location_lat,omitempty"`
	FilterLocationLng            *float64 `json:"filter_location_lng,omitempty"`
	FilterLocationRadius         *int     `json:"filter_location_radius,omitempty"`
	FilterLocationQuery          *string  `json:"filter_location_query,omitempty"`
	FilterLocationGeohash        *string  `json:"filter_location_geohash,omitempty"`
	FilterExcludeLocation        *string  `json:"filter_exclude_location,omitempty"`
	FilterExcludeLocationQuery   *string  `json:"filter_exclude_location_query,omitempty"`
	FilterExcludeLocationGeohash *string  `json:"filter_exclude_location_geohash,omitempty"`

	// Geocode
	FilterGeocodeAdmin1Region *string `json:"filter_geocode_admin1_region,omitempty"`
	FilterGeocodeAdmin2Region *string `json:"filter_geocode_admin2_region,omitempty"`
	FilterGeocodeCountryCode  *string `json:"filter_geocode_country_code,omitempty"`
	FilterGeocodeName         *string `json:"filter_geocode_name,omitempty"`

	// External services
	FilterExternalExists                    []string `json:"filter_external_exists,omitempty"`
	OperatorFilterExternalExists            *string  `json:"operator_filter_external_exists,omitempty"`
	FilterExternalResyCountMin              *int     `json:"filter_external_resy_count_min,omitempty"`
	FilterExternalResyCountMax              *int     `json:"filter_external_resy_count_max,omitempty"`
	FilterExternalResyRatingMin             *float64 `json:"filter_external_resy_rating_min,omitempty"`
	FilterExternalResyRatingMax             *float64 `json:"filter_external_resy_rating_max,omitempty"`
	FilterExternalResyPartySizeMin          *int     `json:"filter_external_resy_party_size_min,omitempty"`
	FilterExternalResyPartySizeMax          *int     `json:"filter_external_resy_party_size_max,omitempty"`
	FilterExternalTripadvisorRatingCountMin *int     `json:"filter_external_tripadvisor_rating_count_min,omitempty"`
	FilterExternalTripadvisorRatingCountMax *int     `json:"filter_external_tripadvisor_rating_count_max,omitempty"`
	FilterExternalTripadvisorRatingMin      *float64 `json:"filter_external_tripadvisor_rating_min,omitempty"`
	FilterExternalTripadvisorRatingMax      *float64 `json:"filter_external_tripadvisor_rating_max,omitempty"`

	// Ratings
	FilterRatingMin                   *float64 `json:"filter_rating_min,omitempty"`
	FilterRatingMax                   *float64 `json:"filter_rating_max,omitempty"`
	FilterPropertiesBusinessRatingMin *float64 `json:"filter_properties_business_rating_min,omitempty"`
	FilterPropertiesBusinessRatingMax *float64 `json:"filter_properties_business_rating_max,omitempty"`

	// Price
	FilterPriceLevelMin  *int     `json:"filter_price_level_min,omitempty"`
	FilterPriceLevelMax  *int     `json:"filter_price_level_max,omitempty"`
	FilterPriceRangeFrom *int     `json:"filter_price_range_from,omitempty"`
	FilterPriceRangeTo   *int     `json:"filter_price_range_to,omitempty"`
	FilterPriceMin       *float64 `json:"filter_price_min,omitempty"`
	FilterPriceMax       *float64 `json:"filter_price_max,omitempty"`

	// Content
	FilterContentRating *string `json:"filter_content_rating,omitempty"`
	FilterExists        *string `json:"filter_exists,omitempty"`
	FilterHours         *string `json:"filter_hours,omitempty"`

	// Dates and years
	FilterReleaseYearMin     *int    `json:"filter_release_year_min,omitempty"`
	FilterReleaseYearMax     *int    `json:"filter_release_year_max,omitempty"`
	FilterReleaseDateMin     *string `json:"filter_release_date_min,omitempty"`
	FilterReleaseDateMax     *string `json:"filter_release_date_max,omitempty"`
	FilterPublicationYearMin *int    `json:"filter_publication_year_min,omitempty"`
	FilterPublicationYearMax *int    `json:"filter_publication_year_max,omitempty"`
	FilterLatestKnownYearMin *int    `json:"filter_latest_known_year_min,omitempty"`
	FilterLatestKnownYearMax *int    `json:"filter_latest_known_year_max,omitempty"`
	FilterFinaleYearMin      *int    `json:"filter_finale_year_min,omitempty"`
	FilterFinaleYearMax      *int    `json:"filter_finale_year_max,omitempty"`

	// Demographics
	FilterDateOfBirthMin *string `json:"filter_date_of_birth_min,omitempty"`
	FilterDateOfBirthMax *string `json:"filter_date_of_birth_max,omitempty"`
	FilterDateOfDeathMin *string `json:"filter_date_of_death_min,omitempty"`
	FilterDateOfDeathMax *string `json:"filter_date_of_death_max,omitempty"`
	FilterGender         *string `json:"filter_gender,omitempty"`
	FilterHotelClassMin  *int    `json:"filter_hotel_class_min,omitempty"`
	FilterHotelClassMax  *int    `json:"filter_hotel_class_max,omitempty"`

	// Entity references
	FilterReferencesBrand        []string `json:"filter_references_brand,omitempty"`
	FilterReleaseCountry         []string `json:"filter_release_country,omitempty"`
	OperatorFilterReleaseCountry *string  `json:"operator_filter_release_country,omitempty"`
	FilterResultsEntities        *string  `json:"filter_results_entities,omitempty"`
	FilterExcludeEntities        *string  `json:"filter_exclude_entities,omitempty"`
	FilterResultsTags            []string `json:"filter_results_tags,omitempty"`
	FilterParentsTypes           *string  `json:"filter_parents_types,omitempty"`

	// Demographic signals
	SignalDemographicsAge             *string  `json:"signal_demographics_age,omitempty"`
	SignalDemographicsAgeWeight       *float64 `json:"signal_demographics_age_weight,omitempty"`
	SignalDemographicsAudiences       []string `json:"signal_demographics_audiences,omitempty"`
	SignalDemographicsAudiencesWeight *float64 `json:"signal_demographics_audiences_weight,omitempty"`
	SignalDemographicsGender          *string  `json:"signal_demographics_gender,omitempty"`
	SignalDemographicsGenderWeight    *float64 `json:"signal_demographics_gender_weight,omitempty"`

	// Interest signals
	SignalInterestsEntities       []string `json:"signal_interests_entities,omitempty"`
	SignalInterestsEntitiesWeight *float64 `json:"signal_interests_entities_weight,omitempty"`
	SignalInterestsTags           []string `json:"signal_interests_tags,omitempty"`
	SignalInterestsTagsWeight     *float64 `json:"signal_interests_tags_weight,omitempty"`

	// Location signals
	SignalLocation       *string  `json:"signal_location,omitempty"`
	SignalLocationRadius *int     `json:"signal_location_radius,omitempty"`
	SignalLocationQuery  *string  `json:"signal_location_query,omitempty"`
	SignalLocationWeight *float64 `json:"signal_location_weight,omitempty"`

	// Bias, diversification, output
	BiasTrends            *string `json:"bias_trends,omitempty"`
	DiversifyBy           *string `json:"diversify_by,omitempty"`
	DiversifyTake         *int    `json:"diversify_take,omitempty"`
	FeatureExplainability *bool   `json:"feature_explainability,omitempty"`
	OutputHeatmapBoundary *string `json:"output_heatmap_boundary,omitempty"`

	// Pagination and sorting
	Page   *int    `json:"page,omitempty"`
	Take   *int    `json:"take,omitempty"`
	Offset *int    `json:"offset,omitempty"`
	SortBy *string `json:"sort_by,omitempty"`
}

// ToAPIParams serializes the populated fields to wire-format query
// parameters. Unset fields are omitted, list fields are comma-joined after
// dedup, booleans render lowercase. No validation happens here; the
// field-level invariants must already hold.
func (p *InsightParams) ToAPIParams() map[string]string {
	params := make(map[string]string)

	str := func(name string, v *string) {
		if v != nil && *v != "" {
			params[name] = *v
		}
	}
	num := func(name string, v *float64) {
		if v != nil {
			params[name] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	integer := func(name string, v *int) {
		if v != nil {
			params[name] = strconv.Itoa(*v)
		}
	}
	boolean := func(name string, v *bool) {
		if v != nil {
			params[name] = strconv.FormatBool(*v)
		}
	}
	list := func(name string, v []string) {
		if len(v) > 0 {
			params[name] = strings.Join(dedupStrings(v), ",")
		}
	}

	filterType := p.FilterType
	if filterType == "" {
		filterType = EntityTypeBrand
	}
	params["filter.type"] = filterType

	list("filter.tags", p.FilterTags)
	str("operator.filter.tags", p.OperatorFilterTags)
	list("filter.exclude.tags", p.FilterExcludeTags)
	str("operator.exclude.tags", p.OperatorExcludeTags)

	num("filter.popularity.min", p.FilterPopularityMin)
	num("filter.popularity.max", p.FilterPopularityMax)

	str("filter.location", p.FilterLocation)
	num("filter.location.lat", p.FilterLocationLat)
	num("filter.location.lng", p.FilterLocationLng)
	integer("filter.location.radius", p.FilterLocationRadius)
	str("filter.location.query", p.FilterLocationQuery)
	str("filter.location.geohash", p.FilterLocationGeohash)
	str("filter.exclude.location", p.FilterExcludeLocation)
	str("filter.exclude.location.query", p.FilterExcludeLocationQuery)
	str("filter.exclude.location.geohash", p.FilterExcludeLocationGeohash)

	str("filter.geocode.admin1_region", p.FilterGeocodeAdmin1Region)
	str("filter.geocode.admin2_region", p.FilterGeocodeAdmin2Region)
	str("filter.geocode.country_code", p.FilterGeocodeCountryCode)
	str("filter.geocode.name", p.FilterGeocodeName)

	list("filter.external.exists", p.FilterExternalExists)
	str("operator.filter.external.exists", p.OperatorFilterExternalExists)
	integer("filter.external.resy.count.min", p.FilterExternalResyCountMin)
	integer("filter.external.resy.count.max", p.FilterExternalResyCountMax)
	num("filter.external.resy.rating.min", p.FilterExternalResyRatingMin)
	num("filter.external.resy.rating.max", p.FilterExternalResyRatingMax)
	integer("filter.external.resy.party_size.min", p.FilterExternalResyPartySizeMin)
	integer("filter.external.resy.party_size.max", p.FilterExternalResyPartySizeMax)
	integer("filter.external.tripadvisor.rating.count.min", p.FilterExternalTripadvisorRatingCountMin)
	integer("filter.external.tripadvisor.rating.count.max", p.FilterExternalTripadvisorRatingCountMax)
	num("filter.external.tripadvisor.rating.min", p.FilterExternalTripadvisorRatingMin)
	num("filter.external.tripadvisor.rating.max", p.FilterExternalTripadvisorRatingMax)

	num("filter.rating.min", p.FilterRatingMin)
	num("filter.rating.max", p.FilterRatingMax)
	num("filter.properties.business_rating.min", p.FilterPropertiesBusinessRatingMin)
	num("filter.properties.business_rating.max", p.FilterPropertiesBusinessRatingMax)

	integer("filter.price_level.min", p.FilterPriceLevelMin)
	integer("filter.price_level.max", p.FilterPriceLevelMax)
	integer("filter.price_range.from", p.FilterPriceRangeFrom)
	integer("filter.price_range.to", p.FilterPriceRangeTo)
	num("filter.price.min", p.FilterPriceMin)
	num("filter.price.max", p.FilterPriceMax)

	str("filter.content_rating", p.FilterContentRating)
	str("filter.exists", p.FilterExists)
	str("filter.hours", p.FilterHours)

	integer("filter.release_year.min", p.FilterReleaseYearMin)
	integer("filter.release_year.max", p.FilterReleaseYearMax)
	str("filter.release_date.min", p.FilterReleaseDateMin)
	str("filter.release_date.max", p.FilterReleaseDateMax)
	integer("filter.publication_year.min", p.FilterPublicationYearMin)
	integer("filter.publication_year.max", p.FilterPublicationYearMax)
	integer("filter.latest_known_year.min", p.FilterLatestKnownYearMin)
	integer("filter.latest_known_year.max", p.FilterLatestKnownYearMax)
	integer("filter.finale_year.min", p.FilterFinaleYearMin)
	integer("filter.finale_year.max", p.FilterFinaleYearMax)

	str("filter.date_of_birth.min", p.FilterDateOfBirthMin)
	str("filter.date_of_birth.max", p.FilterDateOfBirthMax)
	str("filter.date_of_death.min", p.FilterDateOfDeathMin)
	str("filter.date_of_death.max", p.FilterDateOfDeathMax)
	str("filter.gender", p.FilterGender)
	integer("filter.hotel_class.min", p.FilterHotelClassMin)
	integer("filter.hotel_class.max", p.FilterHotelClassMax)

	list("filter.references_brand", p.FilterReferencesBrand)
	list("filter.release_country", p.FilterReleaseCountry)
	str("operator.filter.release_country", p.OperatorFilterReleaseCountry)
	str("filter.results.entities", p.FilterResultsEntities)
	str("filter.exclude.entities", p.FilterExcludeEntities)
	list("filter.results.tags", p.FilterResultsTags)
	str("filter.parents.types", p.FilterParentsTypes)

	str("signal.demographics.age", p.SignalDemographicsAge)
	num("signal.demographics.age.weight", p.SignalDemographicsAgeWeight)
	list("signal.demographics.audiences", p.SignalDemographicsAudiences)
	num("signal.demographics.audiences.weight", p.SignalDemographicsAudiencesWeight)
	str("signal.demographics.gender", p.SignalDemographicsGender)
	num("signal.demographics.gender.weight", p.SignalDemographicsGenderWeight)

	list("signal.interests.entities", p.SignalInterestsEntities)
	num("signal.interests.entities.weight", p.SignalInterestsEntitiesWeight)
	list("signal.interests.tags", p.SignalInterestsTags)
	num("signal.interests.tags.weight", p.SignalInterestsTagsWeight)

	str("signal.location", p.SignalLocation)
	integer("signal.location.radius", p.SignalLocationRadius)
	str("signal.location.query", p.SignalLocationQuery)
	num("signal.location.weight", p.SignalLocationWeight)

	str("bias.trends", p.BiasTrends)
	str("diversify.by", p.DiversifyBy)
	integer("diversify.take", p.DiversifyTake)
	boolean("feature.explainability", p.FeatureExplainability)
	str("output.heatmap.boundary", p.OutputHeatmapBoundary)

	integer("page", p.Page)
	integer("take", p.Take)
	integer("offset", p.Offset)
	str("sort_by", p.SortBy)

	return params
}

// MergeListField unions ids into the named list-valued field with dedup.
// The result is sorted so the merge is commutative and idempotent. Returns
// an error for unknown or non-list fields so a bad planner target surfaces
// instead of silently dropping resolved IDs.
func (p *InsightParams) MergeListField(name string, ids []string) error {
	target := p.listField(name)
	if target == nil {
		return eris.Errorf("params: %q is not a list-valued field", name)
	}
	merged := dedupStrings(append(append([]string{}, *target...), ids...))
	sort.Strings(merged)
	*target = merged
	return nil
}

// SetLatLngField writes a resolved coordinate to the named scalar field.
// Only the latitude/longitude filter fields accept raw coordinates.
func (p *InsightParams) SetLatLngField(name string, v float64) error {
	switch name {
	case "filter_location_lat":
		p.FilterLocationLat = &v
	case "filter_location_lng":
		p.FilterLocationLng = &v
	default:
		return eris.Errorf("params: %q is not a coordinate field", name)
	}
	return nil
}

// SetLocationField writes a WKT location string to the named field.
func (p *InsightParams) SetLocationField(name, wkt string) error {
	switch name {
	case "filter_location":
		p.FilterLocation = &wkt
	case "filter_exclude_location":
		p.FilterExcludeLocation = &wkt
	case "signal_location":
		p.SignalLocation = &wkt
	default:
		return eris.Errorf("params: %q is not a location field", name)
	}
	return nil
}

func (p *InsightParams) listField(name string) *[]string {
	switch name {
	case "filter_tags":
		return &p.FilterTags
	case "filter_exclude_tags":
		return &p.FilterExcludeTags
	case "filter_external_exists":
		return &p.FilterExternalExists
	case "filter_references_brand":
		return &p.FilterReferencesBrand
	case "filter_release_country":
		return &p.FilterReleaseCountry
	case "filter_results_tags":
		return &p.FilterResultsTags
	case "signal_demographics_audiences":
		return &p.SignalDemographicsAudiences
	case "signal_interests_entities":
		return &p.SignalInterestsEntities
	case "signal_interests_tags":
		return &p.SignalInterestsTags
	}
	return nil
}

// dedupStrings removes duplicates preserving first-seen order.
func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
