package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/repo/postgres"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

func interviewRow(status domain.EvaluationStatus, structured []byte) rowStub {
	now := time.Now().UTC()
	score := 72
	turns, _ := json.Marshal([]domain.TranscriptTurn{{Role: "user", Text: "hello"}})
	var scorePtr *int
	rec := ""
	if structured != nil {
		scorePtr = &score
		rec = "yes"
	}
	return valuesRow(
		"iv-1", "slug-1", "role-1", "cand-1", "completed", string(status),
		"", "att-1", "transcript", turns, "https://rec", "call-1",
		scorePtr, rec, structured,
		&now, &now, nil, now, now,
	)
}

func TestInterviewRepo_Get(t *testing.T) {
	t.Parallel()

	se, _ := json.Marshal(domain.StructuredEvaluation{Recommendation: domain.RecommendationYes, OverallScore: 72})
	pool := &poolStub{row: interviewRow(domain.EvaluationCompleted, se)}
	repo := postgres.NewInterviewRepo(pool)

	iv, err := repo.Get(context.Background(), "iv-1")
	require.NoError(t, err)
	assert.Equal(t, "slug-1", iv.Slug)
	assert.Equal(t, domain.InterviewCompleted, iv.Status)
	assert.Equal(t, domain.EvaluationCompleted, iv.EvaluationStatus)
	require.Len(t, iv.Turns, 1)
	assert.Equal(t, "hello", iv.Turns[0].Text)
	require.NotNil(t, iv.Score)
	assert.Equal(t, 72, *iv.Score)
	require.NotNil(t, iv.Evaluation)
	assert.Equal(t, domain.RecommendationYes, iv.Evaluation.Recommendation)
	assert.Nil(t, iv.EvaluatedAt)
}

func TestInterviewRepo_GetNotFound(t *testing.T) {
	t.Parallel()

	pool := &poolStub{row: errRow(pgx.ErrNoRows)}
	repo := postgres.NewInterviewRepo(pool)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInterviewRepo_QueueTranscript_CAS(t *testing.T) {
	t.Parallel()

	pool := &poolStub{execTag: "UPDATE 1"}
	repo := postgres.NewInterviewRepo(pool)
	u := domain.TranscriptUpdate{Transcript: "t", ExternalCallID: "call-1", Status: domain.InterviewCompleted,
		Turns: []domain.TranscriptTurn{{Role: "user", Text: "hi"}}}

	won, err := repo.QueueTranscript(context.Background(), "iv-1", domain.EvaluationNone, u)
	require.NoError(t, err)
	assert.True(t, won)
	sql := pool.lastSQL()
	assert.Contains(t, sql, "evaluation_status='queued'")
	assert.Contains(t, sql, "WHERE id=$1 AND evaluation_status=$2")

	pool.execTag = "UPDATE 0"
	won, err = repo.QueueTranscript(context.Background(), "iv-1", domain.EvaluationNone, u)
	require.NoError(t, err)
	assert.False(t, won)

	pool.execErr = errors.New("conn reset")
	_, err = repo.QueueTranscript(context.Background(), "iv-1", domain.EvaluationNone, u)
	assert.ErrorContains(t, err, "op=interview.queue_transcript")
}

func TestInterviewRepo_Requeue_PassesStates(t *testing.T) {
	t.Parallel()

	pool := &poolStub{execTag: "UPDATE 1"}
	repo := postgres.NewInterviewRepo(pool)
	won, err := repo.Requeue(context.Background(), "iv-1", []domain.EvaluationStatus{domain.EvaluationFailed, domain.EvaluationCompleted})
	require.NoError(t, err)
	assert.True(t, won)
	require.Len(t, pool.calls, 1)
	assert.Equal(t, []string{"failed", "completed"}, pool.calls[0].args[1])
}

func TestInterviewRepo_ClaimNext(t *testing.T) {
	t.Parallel()

	pool := &poolStub{row: interviewRow(domain.EvaluationClaimed, nil)}
	repo := postgres.NewInterviewRepo(pool)

	iv, ok, err := repo.ClaimNext(context.Background(), "att-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "iv-1", iv.ID)
	assert.Nil(t, iv.Evaluation)
	sql := pool.lastSQL()
	assert.Contains(t, sql, "FOR UPDATE SKIP LOCKED")
	assert.Contains(t, sql, ") AND evaluation_status='queued'")
	assert.True(t, strings.Contains(sql, "RETURNING"))
}

func TestInterviewRepo_ClaimNext_NothingQueued(t *testing.T) {
	t.Parallel()

	pool := &poolStub{row: errRow(pgx.ErrNoRows)}
	repo := postgres.NewInterviewRepo(pool)

	_, ok, err := repo.ClaimNext(context.Background(), "att-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.ClaimByID(context.Background(), "iv-1", "att-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInterviewRepo_ClaimNext_Error(t *testing.T) {
	t.Parallel()

	pool := &poolStub{row: errRow(errors.New("db down"))}
	repo := postgres.NewInterviewRepo(pool)
	_, _, err := repo.ClaimNext(context.Background(), "att-1")
	assert.ErrorContains(t, err, "op=interview.claim_next")
}

func TestInterviewRepo_CompleteAndFail_GuardOnAttempt(t *testing.T) {
	t.Parallel()

	pool := &poolStub{execTag: "UPDATE 1"}
	repo := postgres.NewInterviewRepo(pool)

	won, err := repo.Complete(context.Background(), "iv-1", "att-1", domain.EvaluationResult{
		Score: 81, Recommendation: domain.RecommendationStrongYes,
		Evaluation: domain.StructuredEvaluation{Recommendation: domain.RecommendationStrongYes},
	})
	require.NoError(t, err)
	assert.True(t, won)
	assert.Contains(t, pool.lastSQL(), "evaluation_attempt_id=$2 AND evaluation_status='claimed'")

	pool.execTag = "UPDATE 0"
	long := strings.Repeat("x", 5000)
	won, err = repo.Fail(context.Background(), "iv-1", "att-1", long)
	require.NoError(t, err)
	assert.False(t, won)
	stored := pool.calls[len(pool.calls)-1].args[2].(string)
	assert.LessOrEqual(t, len(stored), postgres.MaxStoredErrorLen)
}

func TestInterviewRepo_ListFailed(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	row := []any{"iv-2", "slug-2", "role-1", "", "completed", "failed", "segmentation failed", "att-2",
		"t", nil, "", "call-2", nil, "", nil, &now, &now, nil, now, now}
	pool := &poolStub{rows: &rowsStub{data: [][]any{row}}}
	repo := postgres.NewInterviewRepo(pool)

	out, err := repo.ListFailed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "segmentation failed", out[0].EvaluationError)
	assert.Equal(t, 100, pool.calls[0].args[0])
}

func TestInterviewRepo_ExpireClaims(t *testing.T) {
	t.Parallel()

	pool := &poolStub{rows: &rowsStub{data: [][]any{{"iv-1"}, {"iv-2"}}}}
	repo := postgres.NewInterviewRepo(pool)

	ids, err := repo.ExpireClaims(context.Background(), time.Now().Add(-time.Hour), "evaluation claim expired")
	require.NoError(t, err)
	assert.Equal(t, []string{"iv-1", "iv-2"}, ids)
	assert.Contains(t, pool.lastSQL(), "evaluation_status='claimed' AND claimed_at < $1")
}
