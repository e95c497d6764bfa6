package domain

import (
	"fmt"
	"strings"
	"time"
)

// QuestionType distinguishes scored interview questions from screening questions.
type QuestionType string

const (
	QuestionScreening QuestionType = "screening"
	QuestionInterview QuestionType = "interview"
)

// Competency weights.
const (
	WeightNiceToHave = 1
	WeightImportant  = 2
	WeightCritical   = 3
)

// Competency is a behaviourally anchored skill; Rubric[i] describes level i+1.
type Competency struct {
	ID          string
	Name        string
	Description string
	Weight      int
	Rubric      [4]string
}

// Validate checks weight bounds and rubric completeness.
func (c Competency) Validate() error {
	if c.Weight < WeightNiceToHave || c.Weight > WeightCritical {
		return fmt.Errorf("%w: competency %q weight %d out of range", ErrInvalidArgument, c.Name, c.Weight)
	}
	for i, anchor := range c.Rubric {
		if strings.TrimSpace(anchor) == "" {
			return fmt.Errorf("%w: competency %q missing rubric level %d", ErrInvalidArgument, c.Name, i+1)
		}
	}
	return nil
}

// Question belongs to a role. Only interview-type questions reference a competency.
type Question struct {
	ID         string
	RoleID     string
	Type       QuestionType
	OrderIndex int
	Text       string
	Competency *Competency
}

// Scored reports whether the question goes through the rubric scorer.
func (q Question) Scored() bool { return q.Type == QuestionInterview && q.Competency != nil }

// QuestionSet is a role's questions in role order together with role context.
type QuestionSet struct {
	RoleID          string
	RoleTitle       string
	RoleDescription string
	Questions       []Question
}

// RoleContext is the short text given to the scorer alongside each answer.
func (qs QuestionSet) RoleContext() string {
	title := strings.TrimSpace(qs.RoleTitle)
	desc := strings.TrimSpace(qs.RoleDescription)
	switch {
	case title != "" && desc != "":
		return title + "\n\n" + desc
	case title != "":
		return title
	default:
		return desc
	}
}

// InterviewQuestionCount counts the questions that will be scored.
func (qs QuestionSet) InterviewQuestionCount() int {
	n := 0
	for _, q := range qs.Questions {
		if q.Scored() {
			n++
		}
	}
	return n
}

// QAPair is a question with the answer the segmenter aligned to it.
type QAPair struct {
	Question Question
	Answer   string
}

// QuestionEvaluation is write-once per interview question per attempt.
type QuestionEvaluation struct {
	ID             string
	InterviewID    string
	AttemptID      string
	QuestionID     string
	CompetencyID   string
	CompetencyName string
	Weight         int
	Score          int
	Strengths      []string
	Concerns       []string
	EvidenceQuotes []string
	WhyNotHigher   string
	Degraded       bool
	CreatedAt      time.Time
}

// TranscriptSummary stores a screening answer and its optional summary.
type TranscriptSummary struct {
	ID          string
	InterviewID string
	AttemptID   string
	QuestionID  string
	Answer      string
	Summary     string
	CreatedAt   time.Time
}
