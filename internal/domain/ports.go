package domain

import "time"

//go:generate mockery --name=InterviewRepository --structname=MockInterviewRepository --filename=interview_repository_mock.go
//go:generate mockery --name=RoleRepository --structname=MockRoleRepository --filename=role_repository_mock.go
//go:generate mockery --name=EvaluationRepository --structname=MockEvaluationRepository --filename=evaluation_repository_mock.go
//go:generate mockery --name=ErrorLogRepository --structname=MockErrorLogRepository --filename=errorlog_repository_mock.go
//go:generate mockery --name=AIClient --structname=MockAIClient --filename=aiclient_mock.go
//go:generate mockery --name=CallDetailFetcher --structname=MockCallDetailFetcher --filename=call_detail_fetcher_mock.go
//go:generate mockery --name=EventPublisher --structname=MockEventPublisher --filename=event_publisher_mock.go

// InterviewRepository owns the interview row. Every evaluation status change is
// a compare-and-swap evaluated by the store; the bool result reports whether
// this caller won the transition.
type InterviewRepository interface {
	Get(ctx Context, id string) (Interview, error)
	GetBySlug(ctx Context, slug string) (Interview, error)
	// QueueTranscript writes the transcript and moves expected -> queued.
	QueueTranscript(ctx Context, id string, expected EvaluationStatus, u TranscriptUpdate) (bool, error)
	// Requeue moves the interview to queued if its status is one of from.
	Requeue(ctx Context, id string, from []EvaluationStatus) (bool, error)
	// ClaimNext claims the oldest queued interview. ok is false when nothing is queued.
	ClaimNext(ctx Context, attemptID string) (iv Interview, ok bool, err error)
	// ClaimByID claims one specific queued interview.
	ClaimByID(ctx Context, id, attemptID string) (iv Interview, ok bool, err error)
	Complete(ctx Context, id, attemptID string, res EvaluationResult) (bool, error)
	Fail(ctx Context, id, attemptID, errMsg string) (bool, error)
	ListFailed(ctx Context, limit int) ([]Interview, error)
	// ExpireClaims fails claims older than before and returns their ids.
	ExpireClaims(ctx Context, before time.Time, errMsg string) ([]string, error)
}

// RoleRepository reads the question set; roles are authored elsewhere.
type RoleRepository interface {
	LoadQuestionSet(ctx Context, roleID string) (QuestionSet, error)
}

// EvaluationRepository stores write-once per-attempt rows.
type EvaluationRepository interface {
	SaveAttempt(ctx Context, evals []QuestionEvaluation, sums []TranscriptSummary) error
	ListQuestionEvaluations(ctx Context, interviewID, attemptID string) ([]QuestionEvaluation, error)
}

// ErrorLogRepository stores triage entries.
type ErrorLogRepository interface {
	Append(ctx Context, e ErrorLogEntry) (string, error)
	Resolve(ctx Context, id, notes string, at time.Time) error
	ListUnresolved(ctx Context, limit int) ([]ErrorLogEntry, error)
}

// AIClient (port) is the text-generation service.
type AIClient interface {
	// ChatJSON returns a JSON document following the schema described in the prompts.
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// CallDetailFetcher (port) is the voice provider's call-detail API.
type CallDetailFetcher interface {
	FetchCall(ctx Context, callID string) (CallDetail, error)
}

// EventPublisher (port) announces evaluation lifecycle changes.
type EventPublisher interface {
	Publish(ctx Context, ev EvaluationEvent) error
}

// ErrorRecorder writes triage entries without ever failing the caller.
type ErrorRecorder interface {
	Record(ctx Context, e ErrorLogEntry)
}
