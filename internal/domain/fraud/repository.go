package fraud

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertLog(ctx context.Context, entry *LogEntry) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO fraud_logs (id, account_id, reason, balance_before, balance_after, device_count, created_at)
		VALUES (:id, :account_id, :reason, :balance_before, :balance_after, :device_count, :created_at)
	`, entry)
	return err
}

func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]LogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entries := []LogEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM fraud_logs
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	return entries, err
}
