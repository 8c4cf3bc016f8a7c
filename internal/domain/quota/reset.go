package quota

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const resetChunkSize = 500

// ResetResult summarizes one daily-reset run.
type ResetResult struct {
	AccountsReset int           `json:"accounts_reset"`
	FailedIDs     []uuid.UUID   `json:"failed_ids,omitempty"`
	Duration      time.Duration `json:"-"`
}

// Resetter zeroes the per-day counters across all accounts at day rollover.
type Resetter struct {
	db *sqlx.DB
}

func NewResetter(db *sqlx.DB) *Resetter {
	return &Resetter{db: db}
}

// ResetDaily zeroes tasks_completed_today, ads_watched_today, scratches_today
// and treasure_unlocked for every account that has any of them set. Work is
// chunked so one bad chunk cannot sink the whole run; failed chunks are
// retried once and their ids reported if they fail again. Streaks are NOT
// touched here: a lapsed streak is detected at the next check-in.
func (r *Resetter) ResetDaily(ctx context.Context) (ResetResult, error) {
	started := time.Now()

	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM accounts
		WHERE tasks_completed_today > 0
		   OR ads_watched_today > 0
		   OR scratches_today > 0
		   OR treasure_unlocked
	`)
	if err != nil {
		return ResetResult{}, err
	}

	res := ResetResult{}
	for start := 0; start < len(ids); start += resetChunkSize {
		end := start + resetChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		n, err := r.resetChunk(ctx, chunk)
		if err != nil {
			log.Warn().Err(err).Int("chunk_size", len(chunk)).Msg("reset chunk failed, retrying")
			n, err = r.resetChunk(ctx, chunk)
		}
		if err != nil {
			log.Error().Err(err).Int("chunk_size", len(chunk)).Msg("reset chunk failed after retry")
			res.FailedIDs = append(res.FailedIDs, chunk...)
			continue
		}
		res.AccountsReset += n
	}

	res.Duration = time.Since(started)
	log.Info().
		Int("accounts_reset", res.AccountsReset).
		Int("failed", len(res.FailedIDs)).
		Dur("duration", res.Duration).
		Msg("daily counter reset completed")
	return res, nil
}

func (r *Resetter) resetChunk(ctx context.Context, ids []uuid.UUID) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET tasks_completed_today = 0,
		    ads_watched_today = 0,
		    scratches_today = 0,
		    treasure_unlocked = FALSE
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return len(ids), nil
	}
	return int(n), nil
}
