package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

// failedItem is one row of the operator's failed queue.
type failedItem struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	RoleID         string     `json:"roleId"`
	CandidateID    string     `json:"candidateId,omitempty"`
	Status         string     `json:"status"`
	Error          string     `json:"error"`
	AttemptID      string     `json:"attemptId,omitempty"`
	ExternalCallID string     `json:"externalCallId,omitempty"`
	QueuedAt       *time.Time `json:"queuedAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type errorLogItem struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Kind        string     `json:"kind"`
	Message     string     `json:"message"`
	InterviewID string     `json:"interviewId,omitempty"`
	CandidateID string     `json:"candidateId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// ListFailedHandler serves GET /v1/evaluations/failed.
func (s *Server) ListFailedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeError(w, r, err, map[string]string{"limit": "range"})
			return
		}
		ivs, err := s.Retries.ListFailed(r.Context(), limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items := make([]failedItem, 0, len(ivs))
		for _, iv := range ivs {
			items = append(items, failedItem{
				ID:             iv.ID,
				Slug:           iv.Slug,
				RoleID:         iv.RoleID,
				CandidateID:    iv.CandidateID,
				Status:         string(iv.EvaluationStatus),
				Error:          iv.EvaluationError,
				AttemptID:      iv.EvaluationAttemptID,
				ExternalCallID: iv.ExternalCallID,
				QueuedAt:       iv.QueuedAt,
				UpdatedAt:      iv.UpdatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// RetryHandler serves POST /v1/interviews/{id}/retry. The evaluation runs
// synchronously within the sweep budget; a failure reports the truncated
// error for display.
func (s *Server) RetryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("id", id); err != nil {
			writeError(w, r, err, map[string]string{"field": "id"})
			return
		}
		ctx := r.Context()
		if s.Cfg.SweepBudget > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Cfg.SweepBudget)
			defer cancel()
		}
		res, err := s.Retries.Retry(ctx, id)
		if err != nil {
			st, _ := statusFor(err)
			if res.InterviewID == "" {
				res.InterviewID = id
			}
			writeJSON(w, st, newSweepResponse(res, err))
			return
		}
		writeJSON(w, http.StatusOK, newSweepResponse(res, nil))
	}
}

// ListErrorsHandler serves GET /v1/errors?unresolved=true. Only the open
// entries are listed; resolved ones are kept for audit until retention.
func (s *Server) ListErrorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if u := strings.TrimSpace(q.Get("unresolved")); u != "" && !strings.EqualFold(u, "true") {
			writeError(w, r, fmt.Errorf("%w: only unresolved=true is supported", domain.ErrInvalidArgument), map[string]string{"unresolved": u})
			return
		}
		limit, err := parseLimit(q.Get("limit"))
		if err != nil {
			writeError(w, r, err, map[string]string{"limit": "range"})
			return
		}
		entries, err := s.Errors.ListUnresolved(r.Context(), limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items := make([]errorLogItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, errorLogItem{
				ID:          e.ID,
				Source:      e.Source,
				Kind:        string(e.Kind),
				Message:     e.Message,
				InterviewID: e.InterviewID,
				CandidateID: e.CandidateID,
				CreatedAt:   e.CreatedAt,
				ResolvedAt:  e.ResolvedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// ResolveErrorHandler serves POST /v1/errors/{id}/resolve.
func (s *Server) ResolveErrorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("id", id); err != nil {
			writeError(w, r, err, map[string]string{"field": "id"})
			return
		}
		var req resolveRequest
		r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		if err := s.Errors.Resolve(r.Context(), id, req.Notes); err != nil {
			if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidArgument) {
				s.record(r.Context(), usecase.NewErrorEntry(usecase.SourceOperator, err, ""))
			}
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
	}
}
