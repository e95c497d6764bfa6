package domain

import "time"

// Recommendation is the five-tier hiring recommendation.
type Recommendation string

const (
	RecommendationStrongYes  Recommendation = "strong_yes"
	RecommendationYes        Recommendation = "yes"
	RecommendationBorderline Recommendation = "borderline"
	RecommendationNo         Recommendation = "no"
	RecommendationStrongNo   Recommendation = "strong_no"
)

// Positive reports whether the tier recommends proceeding.
func (r Recommendation) Positive() bool {
	return r == RecommendationStrongYes || r == RecommendationYes
}

// Negative reports whether the tier recommends against proceeding.
func (r Recommendation) Negative() bool {
	return r == RecommendationNo || r == RecommendationStrongNo
}

// Label is the human form used in rationale text.
func (r Recommendation) Label() string {
	switch r {
	case RecommendationStrongYes:
		return "strong yes"
	case RecommendationStrongNo:
		return "strong no"
	default:
		return string(r)
	}
}

// Confidence qualifies a recommendation.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceModerate Confidence = "moderate"
	ConfidenceLow      Confidence = "low"
)

// CompetencyScore is one line of the per-competency breakdown.
type CompetencyScore struct {
	CompetencyID  string  `json:"competency_id"`
	Name          string  `json:"name"`
	Weight        int     `json:"weight"`
	Score         float64 `json:"score"`
	QuestionCount int     `json:"question_count"`
}

// QuestionSummary is the display form of one question's outcome.
type QuestionSummary struct {
	QuestionID string       `json:"question_id"`
	Question   string       `json:"question"`
	Type       QuestionType `json:"type"`
	Answer     string       `json:"answer"`
	Summary    string       `json:"summary,omitempty"`
	Competency string       `json:"competency,omitempty"`
	Score      *int         `json:"score,omitempty"`
}

// StructuredEvaluation is the aggregate embedded on the interview row.
type StructuredEvaluation struct {
	Recommendation     Recommendation    `json:"recommendation"`
	Confidence         Confidence        `json:"confidence"`
	OverallScore       int               `json:"overall_score"`
	Variance           float64           `json:"variance"`
	Rationale          string            `json:"rationale"`
	ProceedReasons     []string          `json:"proceed_reasons,omitempty"`
	Flags              []string          `json:"flags,omitempty"`
	For                []string          `json:"for,omitempty"`
	Against            []string          `json:"against,omitempty"`
	Concerns           []string          `json:"concerns,omitempty"`
	Strengths          []string          `json:"strengths,omitempty"`
	ReviewFocus        string            `json:"review_focus,omitempty"`
	BorderlineTriggers []string          `json:"borderline_triggers,omitempty"`
	CompetencyScores   []CompetencyScore `json:"competency_scores"`
	QuestionSummaries  []QuestionSummary `json:"question_summaries"`
	DegradedStages     []string          `json:"degraded_stages,omitempty"`
	AttemptID          string            `json:"attempt_id"`
	EvaluatedAt        time.Time         `json:"evaluated_at"`
}
