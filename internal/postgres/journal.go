package postgres

import (
	"context"
	"fmt"

	"github.com/apfk88/heartglance/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Journal persists the glance session audit trail. It implements
// domain.SessionJournal; the controller treats writes as best-effort.
type Journal struct {
	pool *pgxpool.Pool
}

func NewJournal(pool *pgxpool.Pool) *Journal {
	return &Journal{pool: pool}
}

func (j *Journal) SessionStarted(ctx context.Context, handle domain.SessionHandle, attrs domain.SessionAttributes, content domain.ContentState) error {
	const query = `
		INSERT INTO glance_sessions (handle, title, first_bpm, last_bpm, peak_bpm)
		VALUES ($1, $2, $3, $3, $3)
		ON CONFLICT (handle) DO NOTHING
	`

	if _, err := j.pool.Exec(ctx, query, uuid.UUID(handle), attrs.Title, content.BPM); err != nil {
		return fmt.Errorf("failed to record session start: %w", err)
	}
	return nil
}

func (j *Journal) SessionEnded(ctx context.Context, handle domain.SessionHandle, finalContent domain.ContentState) error {
	peak := finalContent.BPM
	if finalContent.Maximum != nil && *finalContent.Maximum > peak {
		peak = *finalContent.Maximum
	}

	const query = `
		UPDATE glance_sessions
		SET ended_at = now(),
		    last_bpm = $2,
		    peak_bpm = GREATEST(COALESCE(peak_bpm, 0), $3)
		WHERE handle = $1
	`

	if _, err := j.pool.Exec(ctx, query, uuid.UUID(handle), finalContent.BPM, peak); err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	return nil
}
