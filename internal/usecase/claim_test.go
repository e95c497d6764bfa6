package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

func queued(id string, age time.Duration) domain.Interview {
	iv := invited(id, "slug-"+id)
	at := time.Now().Add(-age)
	iv.Status, iv.EvaluationStatus, iv.Transcript, iv.QueuedAt = domain.InterviewCompleted, domain.EvaluationQueued, "transcript", &at
	iv.ExternalCallID = "call-" + id
	return iv
}

func TestSweepOnce_NothingQueued(t *testing.T) {
	t.Parallel()
	store := newMemStore(invited("iv-1", "slug-1"))
	svc := usecase.NewClaimService(store, okEvaluator(80, domain.RecommendationStrongYes), nil, &recorder{})

	res, err := svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Claimed)
	assert.Empty(t, res.InterviewID)
}

func TestSweepOnce_ClaimsOldestAndCompletes(t *testing.T) {
	t.Parallel()
	store := newMemStore(queued("iv-new", time.Minute), queued("iv-old", time.Hour))
	pub := &publisher{}
	svc := usecase.NewClaimService(store, okEvaluator(82, domain.RecommendationStrongYes), pub, &recorder{})
	svc.NewAttempt = func() string { return "att-1" }

	res, err := svc.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Claimed)
	assert.Equal(t, "iv-old", res.InterviewID)
	assert.Equal(t, "att-1", res.AttemptID)
	require.NotNil(t, res.Score)
	assert.Equal(t, 82, *res.Score)
	assert.Equal(t, domain.RecommendationStrongYes, res.Recommendation)

	iv := store.get("iv-old")
	assert.Equal(t, domain.EvaluationCompleted, iv.EvaluationStatus)
	assert.Equal(t, "att-1", iv.Evaluation.AttemptID)
	assert.Equal(t, domain.EvaluationQueued, store.get("iv-new").EvaluationStatus)
	assert.Equal(t, []domain.EventType{domain.EventInterviewEvaluated}, pub.types())
}

func TestSweepOnce_FailureMarksFailed(t *testing.T) {
	t.Parallel()
	store := newMemStore(queued("iv-1", time.Minute))
	rec := &recorder{}
	pub := &publisher{}
	boom := evaluatorFunc(func(context.Context, domain.Interview, string) (domain.EvaluationResult, error) {
		return domain.EvaluationResult{}, errors.New("op=evaluation.run: segmentation failed: schema invalid")
	})
	svc := usecase.NewClaimService(store, boom, pub, rec)

	res, err := svc.SweepOnce(context.Background())
	require.Error(t, err)
	assert.True(t, res.Claimed)
	assert.Contains(t, res.Error, "segmentation failed")

	iv := store.get("iv-1")
	assert.Equal(t, domain.EvaluationFailed, iv.EvaluationStatus)
	assert.Contains(t, iv.EvaluationError, "segmentation failed")
	entries := rec.all()
	require.Len(t, entries, 1)
	assert.Equal(t, usecase.SourceSweep, entries[0].Source)
	assert.Equal(t, "iv-1", entries[0].InterviewID)
	assert.Equal(t, []domain.EventType{domain.EventEvaluationFailed}, pub.types())
}

func TestSweepOnce_ClaimErrorIsReported(t *testing.T) {
	t.Parallel()
	store := newMemStore(queued("iv-1", time.Minute))
	store.failNext = errors.New("db down")
	rec := &recorder{}
	svc := usecase.NewClaimService(store, okEvaluator(50, domain.RecommendationBorderline), nil, rec)

	_, err := svc.SweepOnce(context.Background())
	assert.ErrorContains(t, err, "op=claim.sweep")
	require.Len(t, rec.all(), 1)
	assert.Equal(t, domain.ErrorKindPersistence, rec.all()[0].Kind)
	assert.Equal(t, domain.EvaluationQueued, store.get("iv-1").EvaluationStatus)
}

func TestSweepOnce_ConcurrentSweepsClaimOnce(t *testing.T) {
	t.Parallel()
	store := newMemStore(queued("iv-1", time.Minute))
	var runs atomic.Int32
	slow := evaluatorFunc(func(ctx context.Context, iv domain.Interview, attemptID string) (domain.EvaluationResult, error) {
		runs.Add(1)
		time.Sleep(20 * time.Millisecond)
		return okEvaluator(70, domain.RecommendationYes)(ctx, iv, attemptID)
	})
	svc := usecase.NewClaimService(store, slow, nil, &recorder{})

	const workers = 8
	var wg sync.WaitGroup
	var claimed atomic.Int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.SweepOnce(context.Background())
			assert.NoError(t, err)
			if res.Claimed {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), claimed.Load())
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 1, store.completes["iv-1"])
}

func TestSweepOnce_ExpiredClaimCannotComplete(t *testing.T) {
	t.Parallel()
	store := newMemStore(queued("iv-1", time.Minute))
	expireMidway := evaluatorFunc(func(ctx context.Context, iv domain.Interview, attemptID string) (domain.EvaluationResult, error) {
		_, err := store.ExpireClaims(ctx, time.Now().Add(time.Second), usecase.ClaimExpiredMessage)
		require.NoError(t, err)
		return okEvaluator(90, domain.RecommendationStrongYes)(ctx, iv, attemptID)
	})
	svc := usecase.NewClaimService(store, expireMidway, nil, &recorder{})

	_, err := svc.SweepOnce(context.Background())
	assert.ErrorIs(t, err, usecase.ErrClaimLost)
	assert.ErrorIs(t, err, domain.ErrConflict)
	iv := store.get("iv-1")
	assert.Equal(t, domain.EvaluationFailed, iv.EvaluationStatus)
	assert.Equal(t, usecase.ClaimExpiredMessage, iv.EvaluationError)
	assert.Nil(t, iv.Score)
}

func TestSweepOnce_BudgetExpiryStillRecordsFailure(t *testing.T) {
	t.Parallel()
	store := newMemStore(queued("iv-1", time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	waits := evaluatorFunc(func(ctx context.Context, _ domain.Interview, _ string) (domain.EvaluationResult, error) {
		<-ctx.Done()
		return domain.EvaluationResult{}, ctx.Err()
	})
	svc := usecase.NewClaimService(store, waits, nil, &recorder{})

	_, err := svc.SweepOnce(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.EvaluationFailed, store.get("iv-1").EvaluationStatus)
}

func TestExpireStale(t *testing.T) {
	t.Parallel()
	old := queued("iv-old", time.Hour)
	claimedAt := time.Now().Add(-time.Hour)
	old.EvaluationStatus, old.ClaimedAt = domain.EvaluationClaimed, &claimedAt
	fresh := queued("iv-fresh", time.Minute)
	now := time.Now()
	fresh.EvaluationStatus, fresh.ClaimedAt = domain.EvaluationClaimed, &now
	store := newMemStore(old, fresh)
	rec := &recorder{}
	pub := &publisher{}
	svc := usecase.NewClaimService(store, nil, pub, rec)

	n, err := svc.ExpireStale(context.Background(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.EvaluationFailed, store.get("iv-old").EvaluationStatus)
	assert.Equal(t, domain.EvaluationClaimed, store.get("iv-fresh").EvaluationStatus)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, usecase.SourceExpiry, rec.all()[0].Source)
	assert.Equal(t, []domain.EventType{domain.EventEvaluationFailed}, pub.types())
}

func TestDisplayError_Caps(t *testing.T) {
	t.Parallel()
	long := errors.New(strings.Repeat("x", 2000))
	assert.LessOrEqual(t, len(usecase.DisplayError(long)), usecase.MaxDisplayedError)
	assert.Equal(t, "", usecase.DisplayError(nil))
	assert.Equal(t, "short", usecase.DisplayError(errors.New("short")))
}
