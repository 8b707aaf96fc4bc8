package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

type tagSelection struct {
	TagIDs []string `json:"tag_ids"`
}

type audienceSelection struct {
	AudienceIDs []string `json:"audience_ids"`
}

// emptyPayload reports whether a raw search response carries nothing worth
// showing to the selection model.
func emptyPayload(payload json.RawMessage) bool {
	s := strings.TrimSpace(string(payload))
	return s == "" || s == "{}" || s == "[]" || s == "null"
}

// selectTagIDs has the model pick relevant tag IDs out of a raw tag search
// response. It fails fast on an empty payload or goal rather than spending
// a generation call on a question with no answer.
func (p *Pipeline) selectTagIDs(ctx context.Context, payload json.RawMessage, goal string) ([]string, error) {
	if goal == "" {
		return nil, eris.New("pipeline: tag selection without a goal")
	}
	if emptyPayload(payload) {
		return nil, eris.New("pipeline: tag search returned no candidates")
	}

	prompt := fmt.Sprintf(tagSelectionPrompt, goal, string(payload))

	var out tagSelection
	if err := p.generateJSON(ctx, "tag-selection", tagSelectionSystem, prompt, p.cfg.PlannerTemperature, &out); err != nil {
		return nil, err
	}
	return out.TagIDs, nil
}

// selectAudienceIDs is the audience counterpart of selectTagIDs.
func (p *Pipeline) selectAudienceIDs(ctx context.Context, payload json.RawMessage, goal string) ([]string, error) {
	if goal == "" {
		return nil, eris.New("pipeline: audience selection without a goal")
	}
	if emptyPayload(payload) {
		return nil, eris.New("pipeline: audience search returned no candidates")
	}

	prompt := fmt.Sprintf(audienceSelectionPrompt, goal, string(payload))

	var out audienceSelection
	if err := p.generateJSON(ctx, "audience-selection", audienceSelectionSystem, prompt, p.cfg.PlannerTemperature, &out); err != nil {
		return nil, err
	}
	return out.AudienceIDs, nil
}
