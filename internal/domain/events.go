package domain

import "time"

// EventType names an evaluation lifecycle event.
type EventType string

const (
	EventInterviewQueued    EventType = "interview.queued"
	EventInterviewEvaluated EventType = "interview.evaluated"
	EventEvaluationFailed   EventType = "interview.evaluation_failed"
)

// EvaluationEvent is published on the events topic, keyed by interview id.
type EvaluationEvent struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	InterviewID    string         `json:"interview_id"`
	AttemptID      string         `json:"attempt_id,omitempty"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
	Score          *int           `json:"score,omitempty"`
	Error          string         `json:"error,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}
