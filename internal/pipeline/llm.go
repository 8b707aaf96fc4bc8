package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/adbuddy-ai/backend/pkg/anthropic"
)

// extractText concatenates the text blocks of a model response.
func extractText(resp *anthropic.MessageResponse) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// cleanJSON strips markdown code fences and surrounding prose so the
// remainder parses as a JSON object. Models wrap output in ```json fences
// often enough that unmarshalling the raw text is not reliable.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// generateJSON runs a single generation call and unmarshals the JSON
// object in the response into out. stage names the call in errors and
// usage logs.
func (p *Pipeline) generateJSON(ctx context.Context, stage, system, prompt string, temperature float64, out any) error {
	resp, err := p.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	})
	if err != nil {
		return eris.Wrapf(err, "pipeline: %s generation", stage)
	}

	text := extractText(resp)
	if text == "" {
		return eris.Errorf("pipeline: %s returned no text", stage)
	}

	if err := json.Unmarshal([]byte(cleanJSON(text)), out); err != nil {
		return eris.Wrapf(err, "pipeline: %s returned invalid JSON", stage)
	}

	resp.Usage.Log(p.cfg.Model, stage)
	return nil
}
