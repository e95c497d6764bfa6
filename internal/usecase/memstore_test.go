package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// memStore is an in-memory InterviewRepository. Each transition is applied
// under one lock, which gives the same compare-and-swap guarantee as the
// conditional UPDATE in Postgres.
type memStore struct {
	mu        sync.Mutex
	rows      map[string]*domain.Interview
	completes map[string]int
	failNext  error
}

func newMemStore(ivs ...domain.Interview) *memStore {
	m := &memStore{rows: map[string]*domain.Interview{}, completes: map[string]int{}}
	for i := range ivs {
		iv := ivs[i]
		m.rows[iv.ID] = &iv
	}
	return m
}

func (m *memStore) get(id string) domain.Interview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func (m *memStore) takeErr() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memStore) Get(_ context.Context, id string) (domain.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.rows[id]
	if !ok {
		return domain.Interview{}, domain.ErrNotFound
	}
	return *iv, nil
}

func (m *memStore) GetBySlug(_ context.Context, slug string) (domain.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range m.rows {
		if iv.Slug == slug {
			return *iv, nil
		}
	}
	return domain.Interview{}, domain.ErrNotFound
}

func (m *memStore) QueueTranscript(_ context.Context, id string, expected domain.EvaluationStatus, u domain.TranscriptUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return false, err
	}
	iv, ok := m.rows[id]
	if !ok || iv.EvaluationStatus != expected {
		return false, nil
	}
	now := time.Now()
	iv.Transcript, iv.Turns, iv.RecordingURL, iv.ExternalCallID = u.Transcript, u.Turns, u.RecordingURL, u.ExternalCallID
	iv.Status = u.Status
	iv.EvaluationStatus = domain.EvaluationQueued
	iv.EvaluationError = ""
	iv.QueuedAt = &now
	return true, nil
}

func (m *memStore) Requeue(_ context.Context, id string, from []domain.EvaluationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if iv.EvaluationStatus == s {
			now := time.Now()
			iv.EvaluationStatus = domain.EvaluationQueued
			iv.EvaluationError = ""
			iv.QueuedAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ClaimNext(_ context.Context, attemptID string) (domain.Interview, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return domain.Interview{}, false, err
	}
	var queued []*domain.Interview
	for _, iv := range m.rows {
		if iv.EvaluationStatus == domain.EvaluationQueued {
			queued = append(queued, iv)
		}
	}
	if len(queued) == 0 {
		return domain.Interview{}, false, nil
	}
	sort.Slice(queued, func(i, j int) bool {
		a, b := queued[i].QueuedAt, queued[j].QueuedAt
		if a == nil || b == nil {
			return queued[i].ID < queued[j].ID
		}
		return a.Before(*b)
	})
	return m.claim(queued[0], attemptID), true, nil
}

func (m *memStore) ClaimByID(_ context.Context, id, attemptID string) (domain.Interview, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.rows[id]
	if !ok || iv.EvaluationStatus != domain.EvaluationQueued {
		return domain.Interview{}, false, nil
	}
	return m.claim(iv, attemptID), true, nil
}

func (m *memStore) claim(iv *domain.Interview, attemptID string) domain.Interview {
	now := time.Now()
	iv.EvaluationStatus = domain.EvaluationClaimed
	iv.EvaluationAttemptID = attemptID
	iv.ClaimedAt = &now
	return *iv
}

func (m *memStore) Complete(_ context.Context, id, attemptID string, res domain.EvaluationResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return false, err
	}
	iv, ok := m.rows[id]
	if !ok || iv.EvaluationStatus != domain.EvaluationClaimed || iv.EvaluationAttemptID != attemptID {
		return false, nil
	}
	now := time.Now()
	score := res.Score
	se := res.Evaluation
	iv.EvaluationStatus = domain.EvaluationCompleted
	iv.Score = &score
	iv.Recommendation = res.Recommendation
	iv.Evaluation = &se
	iv.EvaluatedAt = &now
	m.completes[id]++
	return true, nil
}

func (m *memStore) Fail(_ context.Context, id, attemptID, msg string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.rows[id]
	if !ok || iv.EvaluationStatus != domain.EvaluationClaimed || iv.EvaluationAttemptID != attemptID {
		return false, nil
	}
	iv.EvaluationStatus = domain.EvaluationFailed
	iv.EvaluationError = msg
	return true, nil
}

func (m *memStore) ListFailed(_ context.Context, _ int) ([]domain.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Interview
	for _, iv := range m.rows {
		if iv.EvaluationStatus == domain.EvaluationFailed {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func (m *memStore) ExpireClaims(_ context.Context, before time.Time, msg string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, iv := range m.rows {
		if iv.EvaluationStatus == domain.EvaluationClaimed && iv.ClaimedAt != nil && iv.ClaimedAt.Before(before) {
			iv.EvaluationStatus = domain.EvaluationFailed
			iv.EvaluationError = msg
			ids = append(ids, iv.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// recorder collects error log entries.
type recorder struct {
	mu      sync.Mutex
	entries []domain.ErrorLogEntry
}

func (r *recorder) Record(_ context.Context, e domain.ErrorLogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recorder) all() []domain.ErrorLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ErrorLogEntry(nil), r.entries...)
}

// publisher collects lifecycle events.
type publisher struct {
	mu     sync.Mutex
	events []domain.EvaluationEvent
	err    error
}

func (p *publisher) Publish(_ context.Context, ev domain.EvaluationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *publisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// evaluatorFunc adapts a function to usecase.Evaluator.
type evaluatorFunc func(ctx context.Context, iv domain.Interview, attemptID string) (domain.EvaluationResult, error)

func (f evaluatorFunc) Run(ctx context.Context, iv domain.Interview, attemptID string) (domain.EvaluationResult, error) {
	return f(ctx, iv, attemptID)
}

func okEvaluator(score int, rec domain.Recommendation) evaluatorFunc {
	return func(_ context.Context, _ domain.Interview, attemptID string) (domain.EvaluationResult, error) {
		return domain.EvaluationResult{Score: score, Recommendation: rec,
			Evaluation: domain.StructuredEvaluation{Recommendation: rec, OverallScore: score, AttemptID: attemptID}}, nil
	}
}

func invited(id, slug string) domain.Interview {
	return domain.Interview{ID: id, Slug: slug, RoleID: "role-1", Status: domain.InterviewInvited, EvaluationStatus: domain.EvaluationNone}
}
