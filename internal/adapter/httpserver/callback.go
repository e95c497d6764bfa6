package httpserver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/voice"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

const defaultMaxCallbackBytes = 2 << 20

func allowedCallbackMIME(m string) bool {
	m = strings.ToLower(m)
	return strings.HasPrefix(m, "application/json") || strings.HasPrefix(m, "text/plain")
}

// CallbackHandler receives the voice provider's completion callback.
// It verifies the signature over the raw body, decodes whichever payload
// layout arrived and hands the normalized callback to the ingest service.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		lg := LoggerFrom(r)
		limit := s.Cfg.MaxCallbackBytes
		if limit <= 0 {
			limit = defaultMaxCallbackBytes
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.rejectCallback(w, r, fmt.Errorf("%w: callback body exceeds %d bytes", domain.ErrInvalidArgument, limit), http.StatusRequestEntityTooLarge)
				return
			}
			s.rejectCallback(w, r, fmt.Errorf("%w: read body: %v", domain.ErrInvalidArgument, err), 0)
			return
		}

		verified := false
		if s.Cfg.WebhookSecret != "" {
			if !verifySignature(s.Cfg.WebhookSecret, body, r.Header.Get(SignatureHeader)) {
				s.rejectCallback(w, r, fmt.Errorf("%w: callback signature mismatch", domain.ErrUnauthorized), 0)
				return
			}
			verified = true
		}

		if mt := mimetype.Detect(body); !allowedCallbackMIME(mt.String()) {
			s.rejectCallback(w, r, fmt.Errorf("%w: unsupported callback content %s", domain.ErrInvalidArgument, mt.String()), http.StatusUnsupportedMediaType)
			return
		}

		payload, err := voice.DecodePayload(body)
		if err != nil {
			s.rejectCallback(w, r, err, 0)
			return
		}
		cb := payload.Callback()
		cb.Verified = verified
		lg.Debug("completion callback decoded",
			slog.String("shape", payload.Shape.String()),
			slog.String("event_type", cb.EventType),
			slog.String("call_id", cb.Call.ID))

		status, err := s.Ingest.HandleCallback(ctx, cb)
		if err != nil {
			// The ingest service has already logged and recorded the rejection.
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": status})
	}
}

// rejectCallback records and answers a callback refused before ingest.
// A zero status uses the sentinel mapping.
func (s *Server) rejectCallback(w http.ResponseWriter, r *http.Request, err error, status int) {
	observability.RecordCallback("rejected")
	LoggerFrom(r).Warn("completion callback rejected", slog.Any("error", err))
	s.record(r.Context(), usecase.NewErrorEntry(usecase.SourceWebhook, err, ""))
	if status == 0 {
		writeError(w, r, err, nil)
		return
	}
	_, code := statusFor(err)
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: err.Error()}})
}
