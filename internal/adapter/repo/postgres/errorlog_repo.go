package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/pkg/textx"
)

const maxErrorLogMessageLen = 4000

// ErrorLogRepo persists triage entries.
type ErrorLogRepo struct{ Pool PgxPool }

// NewErrorLogRepo constructs an ErrorLogRepo with the given pool.
func NewErrorLogRepo(p PgxPool) *ErrorLogRepo { return &ErrorLogRepo{Pool: p} }

// Append inserts an entry and returns its id.
func (r *ErrorLogRepo) Append(ctx domain.Context, e domain.ErrorLogEntry) (string, error) {
	tracer := otel.Tracer("repo.error_logs")
	ctx, span := tracer.Start(ctx, "error_logs.Append")
	defer span.End()
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	q := `INSERT INTO error_logs (id, source, kind, message, stack, interview_id, candidate_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.Pool.Exec(ctx, q, id, e.Source, e.Kind, textx.Truncate(e.Message, maxErrorLogMessageLen),
		textx.Truncate(e.Stack, maxErrorLogMessageLen), e.InterviewID, e.CandidateID, created)
	if err != nil {
		return "", fmt.Errorf("op=error_log.append: %w", err)
	}
	return id, nil
}

// Resolve marks an unresolved entry resolved.
func (r *ErrorLogRepo) Resolve(ctx domain.Context, id, notes string, at time.Time) error {
	tracer := otel.Tracer("repo.error_logs")
	ctx, span := tracer.Start(ctx, "error_logs.Resolve")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `UPDATE error_logs SET resolved_at=$2, resolution_notes=$3 WHERE id=$1 AND resolved_at IS NULL`,
		id, at.UTC(), notes)
	if err != nil {
		return fmt.Errorf("op=error_log.resolve: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=error_log.resolve: unresolved entry %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListUnresolved returns open entries, newest first.
func (r *ErrorLogRepo) ListUnresolved(ctx domain.Context, limit int) ([]domain.ErrorLogEntry, error) {
	tracer := otel.Tracer("repo.error_logs")
	ctx, span := tracer.Start(ctx, "error_logs.ListUnresolved")
	defer span.End()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.Pool.Query(ctx, `SELECT id, source, kind, message, stack, interview_id, candidate_id, created_at
		FROM error_logs WHERE resolved_at IS NULL ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("op=error_log.list_unresolved: %w", err)
	}
	defer rows.Close()
	out := make([]domain.ErrorLogEntry, 0)
	for rows.Next() {
		var e domain.ErrorLogEntry
		if err := rows.Scan(&e.ID, &e.Source, &e.Kind, &e.Message, &e.Stack, &e.InterviewID, &e.CandidateID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=error_log.list_unresolved: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=error_log.list_unresolved: %w", err)
	}
	return out, nil
}
