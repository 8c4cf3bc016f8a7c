package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, w *Withdrawal) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO withdrawals (id, account_id, amount, method, detail, status, created_at, updated_at)
		VALUES (:id, :account_id, :amount, :method, :detail, :status, :created_at, :updated_at)
	`, w)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Withdrawal, error) {
	var w Withdrawal
	err := r.db.GetContext(ctx, &w, `SELECT * FROM withdrawals WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// MarkCompleted advances a pending or processing withdrawal to completed.
// The status guard in the WHERE clause makes the transition first-wins.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE withdrawals
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status IN ($4, $5)
	`, id, StatusCompleted, at, StatusPending, StatusProcessing)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Withdrawal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	ws := []Withdrawal{}
	err := r.db.SelectContext(ctx, &ws, `
		SELECT * FROM withdrawals
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	return ws, err
}
