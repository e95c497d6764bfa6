package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

type sweepResponse struct {
	Success        bool                  `json:"success"`
	InterviewID    string                `json:"interviewId,omitempty"`
	AttemptID      string                `json:"attemptId,omitempty"`
	Recommendation domain.Recommendation `json:"recommendation,omitempty"`
	Score          *int                  `json:"score,omitempty"`
	Error          string                `json:"error,omitempty"`
}

func newSweepResponse(res usecase.SweepResult, err error) sweepResponse {
	out := sweepResponse{
		Success:        err == nil,
		InterviewID:    res.InterviewID,
		AttemptID:      res.AttemptID,
		Recommendation: res.Recommendation,
		Score:          res.Score,
		Error:          res.Error,
	}
	if err != nil && out.Error == "" {
		out.Error = usecase.DisplayError(err)
	}
	return out
}

// SweepHandler claims and evaluates at most one queued interview within
// the sweep budget. An empty queue is a success with no interview.
func (s *Server) SweepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.Cfg.SweepBudget > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Cfg.SweepBudget)
			defer cancel()
		}
		res, err := s.Sweeps.SweepOnce(ctx)
		if err != nil {
			LoggerFrom(r).Error("sweep failed", slog.String("interview_id", res.InterviewID), slog.Any("error", err))
			st, _ := statusFor(err)
			writeJSON(w, st, newSweepResponse(res, err))
			return
		}
		if !res.Claimed {
			LoggerFrom(r).Debug("sweep found nothing queued")
		}
		writeJSON(w, http.StatusOK, newSweepResponse(res, nil))
	}
}
