// Package observability carries request-scoped logging state through contexts.
package observability

import (
	"context"
	"log/slog"
)

type loggerContextKey struct{}

// requestIDContextKey stores the originating request_id so that sweeps
// triggered over HTTP correlate with the evaluation they run.
type requestIDContextKey struct{}

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lg)
}

// LoggerFromContext returns the logger stored in the context or the default
// slog logger when none is present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if lg, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && lg != nil {
		return lg
	}
	return slog.Default()
}

// ContextWithRequestID stores a non-empty request_id in the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext retrieves the request_id, or "" when none is present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rid, _ := ctx.Value(requestIDContextKey{}).(string)
	return rid
}

// WithInterview derives a logger tagged with the interview and attempt being
// worked on and stores it in the returned context.
func WithInterview(ctx context.Context, interviewID, attemptID string) (context.Context, *slog.Logger) {
	lg := LoggerFromContext(ctx)
	if interviewID != "" {
		lg = lg.With(slog.String("interview_id", interviewID))
	}
	if attemptID != "" {
		lg = lg.With(slog.String("attempt_id", attemptID))
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		lg = lg.With(slog.String("request_id", rid))
	}
	return ContextWithLogger(ctx, lg), lg
}

type aiOperationContextKey struct{}

// ContextWithAIOperation names the pipeline stage issuing text-generation
// calls so the client can label metrics and logs.
func ContextWithAIOperation(ctx context.Context, op string) context.Context {
	if ctx == nil || op == "" {
		return ctx
	}
	return context.WithValue(ctx, aiOperationContextKey{}, op)
}

// AIOperationFromContext returns the stage name, or "chat" when unset.
func AIOperationFromContext(ctx context.Context) string {
	if ctx == nil {
		return "chat"
	}
	if op, ok := ctx.Value(aiOperationContextKey{}).(string); ok && op != "" {
		return op
	}
	return "chat"
}
