package pipeline

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adbuddy-ai/backend/internal/model"
	"github.com/adbuddy-ai/backend/pkg/geocode"
)

// forcedTake overrides whatever result count the planner drafted. The
// downstream consumers are tuned for this page size.
const forcedTake = 25

// fieldWrite is one resolved value waiting to be merged into the parameter
// set. Exactly one of ids and loc is populated.
type fieldWrite struct {
	field string
	ids   []string
	loc   *geocode.Result
}

// Resolve runs every resolution request concurrently, then merges the
// results into the planner's draft parameters. Individual request failures
// degrade the parameter set instead of failing the run; they are logged and
// the field stays unset. Merges happen only after all requests have
// finished, so the outcome does not depend on completion order.
func (p *Pipeline) Resolve(ctx context.Context, plan *model.PlannerOutput) *model.InsightParams {
	params := plan.Params
	dropMalformedWKT(params)

	writes := make([]*fieldWrite, len(plan.TagRequests)+len(plan.AudienceRequests)+len(plan.LocationRequests))
	g, gctx := errgroup.WithContext(ctx)

	idx := 0
	for _, req := range plan.TagRequests {
		i := idx
		idx++
		g.Go(func() error {
			ids, err := p.resolveTags(gctx, req)
			if err != nil {
				zap.L().Warn("tag resolution failed",
					zap.String("field", req.TargetField),
					zap.Error(err),
				)
				return nil
			}
			writes[i] = &fieldWrite{field: req.TargetField, ids: ids}
			return nil
		})
	}
	for _, req := range plan.AudienceRequests {
		i := idx
		idx++
		g.Go(func() error {
			ids, err := p.resolveAudiences(gctx, req)
			if err != nil {
				zap.L().Warn("audience resolution failed",
					zap.String("field", req.TargetField),
					zap.Error(err),
				)
				return nil
			}
			writes[i] = &fieldWrite{field: req.TargetField, ids: ids}
			return nil
		})
	}
	for _, req := range plan.LocationRequests {
		i := idx
		idx++
		g.Go(func() error {
			loc, err := p.resolveLocation(gctx, req)
			if err != nil {
				zap.L().Warn("location resolution failed",
					zap.String("field", req.TargetField),
					zap.String("place", req.PlaceName),
					zap.Error(err),
				)
				return nil
			}
			writes[i] = &fieldWrite{field: req.TargetField, loc: loc}
			return nil
		})
	}

	// Workers only log failures, so Wait is a join.
	_ = g.Wait()

	for _, w := range writes {
		if w == nil {
			continue
		}
		var err error
		if w.loc != nil {
			err = applyLocation(params, w.field, w.loc)
		} else {
			err = params.MergeListField(w.field, w.ids)
		}
		if err != nil {
			zap.L().Warn("merge skipped", zap.String("field", w.field), zap.Error(err))
		}
	}

	take := forcedTake
	params.Take = &take

	return params
}

func (p *Pipeline) resolveTags(ctx context.Context, req model.TagRequest) ([]string, error) {
	payload, err := p.qloo.SearchTags(ctx, req.Query.ToAPIParams())
	if err != nil {
		return nil, err
	}
	return p.selectTagIDs(ctx, payload, req.SelectionGoal)
}

func (p *Pipeline) resolveAudiences(ctx context.Context, req model.AudienceRequest) ([]string, error) {
	payload, err := p.qloo.SearchAudiences(ctx, req.Query.ToAPIParams())
	if err != nil {
		return nil, err
	}
	return p.selectAudienceIDs(ctx, payload, req.SelectionGoal)
}

func (p *Pipeline) resolveLocation(ctx context.Context, req model.LocationRequest) (*geocode.Result, error) {
	loc, err := p.geocoder.Geocode(ctx, req.PlaceName)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, eris.Errorf("pipeline: no geocoding match for %q", req.PlaceName)
	}
	return loc, nil
}

// applyLocation writes a geocoding result to its target field. Coordinate
// fields take the single axis; WKT fields take a POINT in lng-lat order.
func applyLocation(params *model.InsightParams, field string, loc *geocode.Result) error {
	switch {
	case strings.HasSuffix(field, "_lat"):
		return params.SetLatLngField(field, loc.Latitude)
	case strings.HasSuffix(field, "_lng"):
		return params.SetLatLngField(field, loc.Longitude)
	default:
		return params.SetLocationField(field, pointWKT(loc.Longitude, loc.Latitude))
	}
}

// pointWKT renders POINT(lng lat) without the space go-geom's encoder puts
// after the geometry keyword.
func pointWKT(lng, lat float64) string {
	return "POINT(" +
		strconv.FormatFloat(lng, 'f', -1, 64) + " " +
		strconv.FormatFloat(lat, 'f', -1, 64) + ")"
}

// dropMalformedWKT clears planner-drafted location fields that claim to be
// WKT geometry but do not parse. Locality URNs and entity IDs pass through
// untouched.
func dropMalformedWKT(params *model.InsightParams) {
	fields := []struct {
		name  string
		value **string
	}{
		{"filter_location", &params.FilterLocation},
		{"filter_exclude_location", &params.FilterExcludeLocation},
		{"signal_location", &params.SignalLocation},
	}
	for _, f := range fields {
		v := *f.value
		if v == nil {
			continue
		}
		upper := strings.ToUpper(strings.TrimSpace(*v))
		if !strings.HasPrefix(upper, "POINT") && !strings.HasPrefix(upper, "POLYGON") {
			continue
		}
		if _, err := wkt.Unmarshal(*v); err != nil {
			zap.L().Warn("dropping malformed WKT location",
				zap.String("field", f.name),
				zap.String("value", *v),
			)
			*f.value = nil
		}
	}
}
