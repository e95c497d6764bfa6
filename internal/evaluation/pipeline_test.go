package evaluation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain/mocks"
)

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func backendRole() domain.QuestionSet {
	return domain.QuestionSet{
		RoleID:    "role-1",
		RoleTitle: "Backend Engineer",
		Questions: []domain.Question{
			screeningQ("q-0", "When can you start?"),
			interviewQ("q-1", "Tell me about an outage you owned", competency("c-own", "Ownership", 3)),
			interviewQ("q-2", "How do you explain tradeoffs?", competency("c-com", "Communication", 2)),
		},
	}
}

func testInterview() domain.Interview {
	return domain.Interview{
		ID: "iv-1", RoleID: "role-1", EvaluationStatus: domain.EvaluationClaimed,
		Turns: []domain.TranscriptTurn{
			{Role: "interviewer", Text: "When can you start?"},
			{Role: "candidate", Text: "In two weeks."},
		},
	}
}

func happyAI() *routedAI {
	return &routedAI{
		segment: func(string) (string, error) {
			return `{"pairs":[{"question_index":0,"answer":"In two weeks."},
				{"question_index":1,"answer":"I owned the outage fix end to end"},
				{"question_index":2,"answer":"I write short design notes"}]}`, nil
		},
		score: func(user string) (string, error) {
			if strings.Contains(user, "outage fix") {
				return `{"score":4,"strengths":["Owned the fix"],"concerns":[],"evidence_quotes":["I owned the outage fix"]}`, nil
			}
			return `{"score":3,"strengths":["Writes design notes"],"concerns":["Few examples"]}`, nil
		},
		rationale: func(string) (string, error) {
			return `{"rationale":"Strong ownership with clear communication."}`, nil
		},
	}
}

func newTestPipeline(t *testing.T, ai domain.AIClient) (*Pipeline, *mocks.MockRoleRepository, *mocks.MockEvaluationRepository) {
	roles := mocks.NewMockRoleRepository(t)
	evals := mocks.NewMockEvaluationRepository(t)
	p := NewPipeline(config.Config{ChatModel: "gpt-4o-mini", MaxTranscriptTokens: 1000}, config.DefaultScoringPolicy(), ai, nil, roles, evals)
	p.Now = func() time.Time { return fixedNow }
	return p, roles, evals
}

func TestPipeline_Run_Success(t *testing.T) {
	ai := happyAI()
	p, roles, evals := newTestPipeline(t, ai)
	roles.On("LoadQuestionSet", mock.Anything, "role-1").Return(backendRole(), nil).Once()

	var saved []domain.QuestionEvaluation
	var savedSums []domain.TranscriptSummary
	evals.On("SaveAttempt", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]domain.QuestionEvaluation)
			savedSums = args.Get(2).([]domain.TranscriptSummary)
		}).Return(nil).Once()

	res, err := p.Run(context.Background(), testInterview(), "att-1")
	require.NoError(t, err)

	// 100 * (4*3 + 3*2) / (4*3 + 4*2)
	assert.Equal(t, 90, res.Score)
	assert.Equal(t, domain.RecommendationStrongYes, res.Recommendation)
	se := res.Evaluation
	assert.Equal(t, domain.ConfidenceHigh, se.Confidence)
	assert.Equal(t, 90, se.OverallScore)
	assert.Equal(t, "att-1", se.AttemptID)
	assert.Equal(t, fixedNow, se.EvaluatedAt)
	assert.Equal(t, "Strong ownership with clear communication.", se.Rationale)
	assert.Equal(t, []string{"Owned the fix", "Writes design notes"}, se.ProceedReasons)
	assert.Equal(t, []string{"Few examples"}, se.Flags)
	assert.Empty(t, se.DegradedStages)
	require.Len(t, se.QuestionSummaries, 3)
	assert.Equal(t, "In two weeks.", se.QuestionSummaries[0].Answer)
	assert.Nil(t, se.QuestionSummaries[0].Score)
	require.NotNil(t, se.QuestionSummaries[1].Score)
	assert.Equal(t, 4, *se.QuestionSummaries[1].Score)
	assert.Equal(t, "Ownership", se.QuestionSummaries[1].Competency)

	require.Len(t, saved, 2)
	for _, ev := range saved {
		assert.Equal(t, "iv-1", ev.InterviewID)
		assert.Equal(t, "att-1", ev.AttemptID)
	}
	require.Len(t, savedSums, 1)
	assert.Equal(t, "q-0", savedSums[0].QuestionID)
	assert.Equal(t, "att-1", savedSums[0].AttemptID)

	assert.Equal(t, 1, ai.count("segment"))
	assert.Equal(t, 2, ai.count("score"))
	assert.Equal(t, 0, ai.count("summary"))
	assert.Equal(t, 1, ai.count("rationale"))
}

func TestPipeline_Run_DegradedStepsStillComplete(t *testing.T) {
	ai := happyAI()
	ai.score = func(user string) (string, error) {
		if strings.Contains(user, "outage fix") {
			return `{"score":4,"strengths":["Owned the fix"]}`, nil
		}
		return "", domain.ErrUpstreamTimeout
	}
	ai.rationale = nil
	p, roles, evals := newTestPipeline(t, ai)
	roles.On("LoadQuestionSet", mock.Anything, "role-1").Return(backendRole(), nil).Once()
	evals.On("SaveAttempt", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	res, err := p.Run(context.Background(), testInterview(), "att-2")
	require.NoError(t, err)
	// the failed answer takes the default score of 2: 100 * (12 + 4) / 20
	assert.Equal(t, 80, res.Score)
	assert.Equal(t, []string{"score:q-2", "rationale"}, res.Evaluation.DegradedStages)
	assert.Equal(t, "Candidate scored 80/100, resulting in a strong yes recommendation.", res.Evaluation.Rationale)
	assert.Contains(t, res.Evaluation.Flags, UnscoredConcern)
}

func TestPipeline_Run_SegmentationFailureIsFatal(t *testing.T) {
	ai := happyAI()
	ai.segment = func(string) (string, error) { return `{"pairs":[]}`, nil }
	p, roles, evals := newTestPipeline(t, ai)
	roles.On("LoadQuestionSet", mock.Anything, "role-1").Return(backendRole(), nil).Once()

	_, err := p.Run(context.Background(), testInterview(), "att-3")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
	assert.Contains(t, err.Error(), "segmentation failed")
	assert.Equal(t, 0, ai.count("score"))
	evals.AssertNotCalled(t, "SaveAttempt", mock.Anything, mock.Anything, mock.Anything)
}

func TestPipeline_Run_NoScoredQuestions(t *testing.T) {
	ai := happyAI()
	p, roles, _ := newTestPipeline(t, ai)
	qs := backendRole()
	qs.Questions = qs.Questions[:1]
	roles.On("LoadQuestionSet", mock.Anything, "role-1").Return(qs, nil).Once()

	_, err := p.Run(context.Background(), testInterview(), "att-4")
	assert.ErrorIs(t, err, ErrNoScoredQuestions)
	assert.Equal(t, 0, ai.count("segment"))
}

func TestPipeline_Run_PersistenceFailureIsFatal(t *testing.T) {
	ai := happyAI()
	p, roles, evals := newTestPipeline(t, ai)
	roles.On("LoadQuestionSet", mock.Anything, "role-1").Return(backendRole(), nil).Once()
	evals.On("SaveAttempt", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	_, err := p.Run(context.Background(), testInterview(), "att-5")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, ai.count("rationale"))
}

func TestPipeline_Run_UnknownRole(t *testing.T) {
	p, roles, _ := newTestPipeline(t, happyAI())
	roles.On("LoadQuestionSet", mock.Anything, "role-1").Return(domain.QuestionSet{}, domain.ErrNotFound).Once()

	_, err := p.Run(context.Background(), testInterview(), "att-6")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
