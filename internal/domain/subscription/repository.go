package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertRecord appends a purchase-history row. payment_ref is unique; a
// collision means the same payment was recorded before.
func (r *Repository) InsertRecord(ctx context.Context, rec *Record) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO subscription_records (id, account_id, plan_id, amount, payment_ref, status, created_at, expires_at)
		VALUES (:id, :account_id, :plan_id, :amount, :payment_ref, :status, :created_at, :expires_at)
	`, rec)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyProcessed
		}
		return err
	}
	return nil
}

// ListByAccount returns purchase history, newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	recs := []Record{}
	err := r.db.SelectContext(ctx, &recs, `
		SELECT * FROM subscription_records
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	return recs, err
}
