package evaluation

import (
	"fmt"
	"strings"

	aipkg "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/ai"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
)

// RationaleWriter produces the short explanation shown with a recommendation.
type RationaleWriter struct {
	AI domain.AIClient
}

// FallbackRationale is used whenever the model cannot supply one.
func FallbackRationale(overall int, rec domain.Recommendation) string {
	return fmt.Sprintf("Candidate scored %d/100, resulting in a %s recommendation.", overall, rec.Label())
}

// Write never fails: any problem yields the templated sentence.
func (w RationaleWriter) Write(ctx domain.Context, agg Aggregation, cls Classification) domain.Outcome[string] {
	fallback := FallbackRationale(agg.Overall, cls.Recommendation)
	raw, err := w.AI.ChatJSON(obsctx.ContextWithAIOperation(ctx, "rationale"), rationaleSystemPrompt, rationaleUserPrompt(agg, cls), 300)
	if err != nil {
		return domain.Degraded(fallback, "rationale call failed: "+err.Error())
	}
	var resp struct {
		Rationale string `json:"rationale"`
	}
	if err := aipkg.DecodeJSON(raw, &resp); err != nil {
		return domain.Degraded(fallback, "rationale reply unreadable: "+err.Error())
	}
	text := strings.TrimSpace(resp.Rationale)
	if text == "" {
		return domain.Degraded(fallback, "rationale reply empty")
	}
	return domain.Ok(text)
}
