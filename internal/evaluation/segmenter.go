// Package evaluation turns an interview transcript into a scored,
// classified evaluation. Every step that talks to the text-generation
// service reports a domain.Outcome so the pipeline can tell a usable
// fallback from a failure.
package evaluation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	aipkg "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/ai"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
)

// TokenBudget trims text to a token limit.
type TokenBudget interface {
	Truncate(text, model string, maxTokens int) (string, bool)
}

// Segmenter aligns transcript passages to questions with one model call.
type Segmenter struct {
	AI        domain.AIClient
	Budget    TokenBudget
	Model     string
	MaxTokens int
	// ResponseTokens caps the reply; zero uses a default.
	ResponseTokens int
}

type rawPair struct {
	QuestionIndex any `json:"question_index"`
	Answer        any `json:"answer"`
}

// Segment returns one pair per question, in question order. Unanswered
// questions get an empty answer. The attempt is fatal only when the call
// fails or no usable pair comes back.
func (s Segmenter) Segment(ctx domain.Context, transcript string, questions []domain.Question) ([]domain.QAPair, error) {
	ctx, span := otel.Tracer("evaluation").Start(ctx, "evaluation.Segment")
	defer span.End()
	span.SetAttributes(attribute.Int("questions.count", len(questions)))
	lg := obsctx.LoggerFromContext(ctx)

	if len(questions) == 0 {
		return nil, fmt.Errorf("op=evaluation.segment: %w: role has no questions", domain.ErrInvalidArgument)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("op=evaluation.segment: %w: empty transcript", domain.ErrInvalidArgument)
	}
	if s.Budget != nil {
		var cut bool
		if transcript, cut = s.Budget.Truncate(transcript, s.Model, s.MaxTokens); cut {
			lg.Warn("transcript truncated to token budget", slog.Int("max_tokens", s.MaxTokens))
		}
	}

	respTokens := s.ResponseTokens
	if respTokens <= 0 {
		respTokens = 4096
	}
	raw, err := s.AI.ChatJSON(obsctx.ContextWithAIOperation(ctx, "segment"), segmentSystemPrompt, segmentUserPrompt(questions, transcript), respTokens)
	if err != nil {
		return nil, fmt.Errorf("op=evaluation.segment: %w", err)
	}
	var resp struct {
		Pairs []json.RawMessage `json:"pairs"`
	}
	if err := aipkg.DecodeJSON(raw, &resp); err != nil {
		return nil, fmt.Errorf("op=evaluation.segment: %w", err)
	}

	answers := make(map[int]string, len(questions))
	dropped := 0
	for _, item := range resp.Pairs {
		var p rawPair
		if err := json.Unmarshal(item, &p); err != nil {
			dropped++
			continue
		}
		idx, ok := parseIndex(p.QuestionIndex)
		answer, isString := p.Answer.(string)
		if !ok || idx < 0 || idx >= len(questions) || !isString {
			dropped++
			continue
		}
		if _, seen := answers[idx]; seen {
			dropped++
			continue
		}
		answers[idx] = strings.TrimSpace(answer)
	}
	if dropped > 0 {
		lg.Warn("segmenter dropped malformed pairs", slog.Int("dropped", dropped), slog.Int("kept", len(answers)))
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("op=evaluation.segment: %w: no valid question/answer pairs", domain.ErrSchemaInvalid)
	}

	pairs := make([]domain.QAPair, len(questions))
	for i, q := range questions {
		pairs[i] = domain.QAPair{Question: q, Answer: answers[i]}
	}
	span.SetAttributes(attribute.Int("pairs.answered", len(answers)))
	return pairs, nil
}

// parseIndex accepts integers, integral floats and numeric strings.
func parseIndex(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}
