package evaluation

import (
	"context"
	"strings"
	"sync"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// aiFunc adapts a function to domain.AIClient.
type aiFunc func(ctx context.Context, system, user string, maxTokens int) (string, error)

func (f aiFunc) ChatJSON(ctx context.Context, system, user string, maxTokens int) (string, error) {
	return f(ctx, system, user, maxTokens)
}

// routedAI answers by step and counts calls per step.
type routedAI struct {
	mu        sync.Mutex
	calls     map[string]int
	segment   func(user string) (string, error)
	score     func(user string) (string, error)
	summary   func(user string) (string, error)
	rationale func(user string) (string, error)
}

func (r *routedAI) ChatJSON(_ context.Context, system, user string, _ int) (string, error) {
	step := "unknown"
	var fn func(string) (string, error)
	switch system {
	case segmentSystemPrompt:
		step, fn = "segment", r.segment
	case scoreSystemPrompt:
		step, fn = "score", r.score
	case summarySystemPrompt:
		step, fn = "summary", r.summary
	case rationaleSystemPrompt:
		step, fn = "rationale", r.rationale
	}
	r.mu.Lock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[step]++
	r.mu.Unlock()
	if fn == nil {
		return "", domain.ErrUpstreamTimeout
	}
	return fn(user)
}

func (r *routedAI) count(step string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[step]
}

func competency(id, name string, weight int) *domain.Competency {
	return &domain.Competency{
		ID: id, Name: name, Weight: weight,
		Rubric: [4]string{"poor", "partial", "solid", "exceptional"},
	}
}

func interviewQ(id, text string, c *domain.Competency) domain.Question {
	return domain.Question{ID: id, Type: domain.QuestionInterview, Text: text, Competency: c}
}

func screeningQ(id, text string) domain.Question {
	return domain.Question{ID: id, Type: domain.QuestionScreening, Text: text}
}

func eval(comp string, weight, score int, strengths, concerns []string) domain.QuestionEvaluation {
	return domain.QuestionEvaluation{
		CompetencyID: "c-" + strings.ToLower(comp), CompetencyName: comp,
		Weight: weight, Score: score, Strengths: strengths, Concerns: concerns,
	}
}

func flat(scores ...int) []domain.QuestionEvaluation {
	out := make([]domain.QuestionEvaluation, 0, len(scores))
	for i, s := range scores {
		out = append(out, eval(string(rune('A'+i)), 1, s, nil, nil))
	}
	return out
}
