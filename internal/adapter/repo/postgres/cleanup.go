package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// CleanupService enforces data retention for triage and superseded attempt rows.
type CleanupService struct {
	Pool          PgxPool
	RetentionDays int
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(pool PgxPool, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupService{Pool: pool, RetentionDays: retentionDays}
}

// CleanupOldData removes resolved error entries and rows from attempts that
// were superseded by a later one, both older than the retention period.
func (s *CleanupService) CleanupOldData(ctx context.Context) (err error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.RetentionDays)

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=cleanup.begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	logs, err := tx.Exec(ctx, `DELETE FROM error_logs WHERE resolved_at IS NOT NULL AND resolved_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.error_logs: %w", err)
	}
	evals, err := tx.Exec(ctx, `DELETE FROM question_evaluations qe USING interviews i
		WHERE qe.interview_id = i.id AND qe.attempt_id <> i.evaluation_attempt_id AND qe.created_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.question_evaluations: %w", err)
	}
	sums, err := tx.Exec(ctx, `DELETE FROM transcript_summaries ts USING interviews i
		WHERE ts.interview_id = i.id AND ts.attempt_id <> i.evaluation_attempt_id AND ts.created_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("op=cleanup.transcript_summaries: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=cleanup.commit: %w", err)
	}

	slog.Info("data cleanup completed",
		slog.Int64("deleted_error_logs", logs.RowsAffected()),
		slog.Int64("deleted_superseded_evaluations", evals.RowsAffected()),
		slog.Int64("deleted_superseded_summaries", sums.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// RunPeriodic runs CleanupOldData now and then on every tick until ctx ends.
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
