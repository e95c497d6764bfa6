package evaluation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	aipkg "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/ai"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/pkg/textx"
)

// UnscoredConcern is added when no usable model output came back for an answer.
const UnscoredConcern = "Automated scoring was unavailable for this answer; review it manually."

const maxListItems = 5

// Scorer grades one interview answer against its competency rubric.
type Scorer struct {
	AI             domain.AIClient
	Policy         config.ScoringPolicy
	ResponseTokens int
}

type scoreResponse struct {
	Score          any   `json:"score"`
	Strengths      []any `json:"strengths"`
	Concerns       []any `json:"concerns"`
	EvidenceQuotes []any `json:"evidence_quotes"`
	WhyNotHigher   any   `json:"why_not_higher_score"`
}

// Score never fails the attempt for model trouble: a failed call, an
// unreadable reply or an out-of-range score all degrade to the default
// score. Only a pair that is not a scored question is fatal.
func (s Scorer) Score(ctx domain.Context, pair domain.QAPair, roleContext string) domain.Outcome[domain.QuestionEvaluation] {
	ctx, span := otel.Tracer("evaluation").Start(ctx, "evaluation.Score")
	defer span.End()
	span.SetAttributes(attribute.String("question.id", pair.Question.ID))

	if !pair.Question.Scored() {
		return domain.Fatal[domain.QuestionEvaluation](fmt.Errorf("op=evaluation.score: %w: question %s has no competency", domain.ErrInvalidArgument, pair.Question.ID))
	}
	comp := pair.Question.Competency
	base := domain.QuestionEvaluation{
		QuestionID:     pair.Question.ID,
		CompetencyID:   comp.ID,
		CompetencyName: comp.Name,
		Weight:         comp.Weight,
	}
	fallback := func(reason string) domain.Outcome[domain.QuestionEvaluation] {
		ev := base
		ev.Score = s.Policy.DefaultScore
		ev.Concerns = []string{UnscoredConcern}
		ev.Degraded = true
		return domain.Degraded(ev, reason)
	}

	tokens := s.ResponseTokens
	if tokens <= 0 {
		tokens = 800
	}
	raw, err := s.AI.ChatJSON(obsctx.ContextWithAIOperation(ctx, "score"), scoreSystemPrompt, scoreUserPrompt(pair, roleContext), tokens)
	if err != nil {
		return fallback("scoring call failed: " + err.Error())
	}
	var resp scoreResponse
	if err := aipkg.DecodeJSON(raw, &resp); err != nil {
		return fallback("scoring reply unreadable: " + err.Error())
	}

	ev := base
	ev.Strengths = stringList(resp.Strengths, maxListItems)
	ev.Concerns = stringList(resp.Concerns, maxListItems)
	ev.EvidenceQuotes = stringList(resp.EvidenceQuotes, maxListItems)
	if why, ok := resp.WhyNotHigher.(string); ok {
		ev.WhyNotHigher = strings.TrimSpace(why)
	}
	score, ok := parseScore(resp.Score)
	if !ok {
		ev.Score = s.Policy.DefaultScore
		ev.Degraded = true
		return domain.Degraded(ev, fmt.Sprintf("score %v missing or outside 1-4", resp.Score))
	}
	ev.Score = score
	span.SetAttributes(attribute.Int("score", score))
	return domain.Ok(ev)
}

// parseScore accepts integers 1..4, including integral floats and numeric strings.
func parseScore(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f < 1 || f > 4 {
		return 0, false
	}
	return int(f), true
}

// stringList keeps non-empty string items, up to max.
func stringList(items []any, max int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		s = textx.SanitizeText(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

// Summarizer condenses long screening answers.
type Summarizer struct {
	AI     domain.AIClient
	Policy config.ScoringPolicy
}

// NeedsSummary reports whether the spoken answer is estimated to run past
// the policy threshold, at WordsPerSecond words a second.
func (s Summarizer) NeedsSummary(answer string) bool {
	seconds := float64(textx.WordCount(answer)) / s.Policy.WordsPerSecond
	return seconds > s.Policy.ScreeningSummarySeconds
}

// Summarize returns the stored screening row. Short answers are kept raw
// without a call; a failed call degrades to the raw answer.
func (s Summarizer) Summarize(ctx domain.Context, pair domain.QAPair) domain.Outcome[domain.TranscriptSummary] {
	row := domain.TranscriptSummary{QuestionID: pair.Question.ID, Answer: pair.Answer}
	if !s.NeedsSummary(pair.Answer) {
		return domain.Ok(row)
	}
	ctx, span := otel.Tracer("evaluation").Start(ctx, "evaluation.Summarize")
	defer span.End()

	raw, err := s.AI.ChatJSON(obsctx.ContextWithAIOperation(ctx, "summarize"), summarySystemPrompt, summaryUserPrompt(pair), 200)
	if err != nil {
		return domain.Degraded(row, "summary call failed: "+err.Error())
	}
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := aipkg.DecodeJSON(raw, &resp); err != nil || strings.TrimSpace(resp.Summary) == "" {
		return domain.Degraded(row, "summary reply unusable")
	}
	row.Summary = strings.TrimSpace(resp.Summary)
	return domain.Ok(row)
}
