package domain

import (
	"strings"
	"time"
)

// InterviewStatus is the business lifecycle of an interview.
type InterviewStatus string

const (
	InterviewInvited     InterviewStatus = "invited"
	InterviewInProgress  InterviewStatus = "in_progress"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewScreenedOut InterviewStatus = "screened_out"
	InterviewRejected    InterviewStatus = "rejected"
	InterviewProgressed  InterviewStatus = "progressed"
)

// EvaluationStatus is the evaluation job lifecycle, orthogonal to InterviewStatus.
type EvaluationStatus string

const (
	EvaluationNone      EvaluationStatus = "none"
	EvaluationQueued    EvaluationStatus = "queued"
	EvaluationClaimed   EvaluationStatus = "claimed"
	EvaluationCompleted EvaluationStatus = "completed"
	EvaluationFailed    EvaluationStatus = "failed"
)

var allEvaluationStatuses = []EvaluationStatus{
	EvaluationNone, EvaluationQueued, EvaluationClaimed, EvaluationCompleted, EvaluationFailed,
}

// Valid reports whether s is a known evaluation status.
func (s EvaluationStatus) Valid() bool {
	for _, v := range allEvaluationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// InFlight reports whether an evaluation attempt is queued or running.
func (s EvaluationStatus) InFlight() bool {
	return s == EvaluationQueued || s == EvaluationClaimed
}

// allowedCombinations is the invariant table for the two state machines that
// share one interview row. Interviews that have not finished their call can
// only be unevaluated; decided interviews keep an evaluation on record.
var allowedCombinations = map[InterviewStatus][]EvaluationStatus{
	InterviewInvited:     {EvaluationNone},
	InterviewInProgress:  {EvaluationNone},
	InterviewCompleted:   allEvaluationStatuses,
	InterviewScreenedOut: {EvaluationQueued, EvaluationClaimed, EvaluationCompleted, EvaluationFailed},
	InterviewRejected:    {EvaluationQueued, EvaluationClaimed, EvaluationCompleted, EvaluationFailed},
	InterviewProgressed:  {EvaluationQueued, EvaluationClaimed, EvaluationCompleted, EvaluationFailed},
}

// AllowedCombination reports whether an interview may hold status s and evaluation status e at once.
func AllowedCombination(s InterviewStatus, e EvaluationStatus) bool {
	for _, v := range allowedCombinations[s] {
		if v == e {
			return true
		}
	}
	return false
}

var evaluationTransitions = map[EvaluationStatus][]EvaluationStatus{
	EvaluationNone:      {EvaluationQueued},
	EvaluationQueued:    {EvaluationClaimed},
	EvaluationClaimed:   {EvaluationCompleted, EvaluationFailed},
	EvaluationCompleted: {EvaluationQueued},
	EvaluationFailed:    {EvaluationQueued},
}

// CanTransition reports whether the evaluation state machine permits from -> to.
func CanTransition(from, to EvaluationStatus) bool {
	for _, v := range evaluationTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// StatusAfterCallback returns the business status an interview moves to once its call has ended.
func StatusAfterCallback(s InterviewStatus) InterviewStatus {
	switch s {
	case InterviewInvited, InterviewInProgress, "":
		return InterviewCompleted
	default:
		return s
	}
}

// TranscriptTurn is one utterance in the call transcript.
type TranscriptTurn struct {
	Role    string  `json:"role"`
	Text    string  `json:"text"`
	Seconds float64 `json:"seconds_from_start,omitempty"`
}

// Interview is the aggregate the evaluation pipeline mutates.
// Invariants: AllowedCombination(Status, EvaluationStatus); EvaluationStatus only
// reaches completed once per distinct ExternalCallID.
type Interview struct {
	ID                  string
	Slug                string
	RoleID              string
	CandidateID         string
	Status              InterviewStatus
	EvaluationStatus    EvaluationStatus
	EvaluationError     string
	EvaluationAttemptID string
	Transcript          string
	Turns               []TranscriptTurn
	RecordingURL        string
	ExternalCallID      string
	Score               *int
	Recommendation      Recommendation
	Evaluation          *StructuredEvaluation
	QueuedAt            *time.Time
	ClaimedAt           *time.Time
	EvaluatedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasTranscript reports whether any transcript content is stored.
func (i Interview) HasTranscript() bool {
	if strings.TrimSpace(i.Transcript) != "" {
		return true
	}
	for _, t := range i.Turns {
		if strings.TrimSpace(t.Text) != "" {
			return true
		}
	}
	return false
}

// TranscriptText renders the turn list as "Role: text" lines when present, else the raw transcript.
func (i Interview) TranscriptText() string {
	if len(i.Turns) == 0 {
		return strings.TrimSpace(i.Transcript)
	}
	var b strings.Builder
	for _, t := range i.Turns {
		txt := strings.TrimSpace(t.Text)
		if txt == "" {
			continue
		}
		role := t.Role
		if role == "" {
			role = "unknown"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(txt)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return strings.TrimSpace(i.Transcript)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TranscriptUpdate is what the ingestor writes when it queues an interview.
type TranscriptUpdate struct {
	Transcript     string
	Turns          []TranscriptTurn
	RecordingURL   string
	ExternalCallID string
	Status         InterviewStatus
}

// EvaluationResult is persisted on the interview when an attempt completes.
type EvaluationResult struct {
	Score          int
	Recommendation Recommendation
	Evaluation     StructuredEvaluation
}

// CallDetail is the voice provider's view of a finished call.
type CallDetail struct {
	ID           string
	Transcript   string
	Turns        []TranscriptTurn
	RecordingURL string
}

// HasTranscript reports whether the call carries any transcript content.
func (d CallDetail) HasTranscript() bool {
	return strings.TrimSpace(d.Transcript) != "" || len(d.Turns) > 0
}

// CompletionCallback is a provider callback normalized by the transport
// layer. Ingestible is false for event types the pipeline does not act on.
type CompletionCallback struct {
	EventType  string
	Ingestible bool
	Slug       string
	Call       CallDetail
	// Verified is false when no signing secret is configured.
	Verified bool
}
