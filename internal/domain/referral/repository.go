package referral

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

// ResolveCode returns the account that owns a referral code.
func (r *Repository) ResolveCode(ctx context.Context, code string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT id FROM accounts WHERE referral_code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrCodeNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *Repository) Insert(ctx context.Context, ref *Referral) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO referrals (id, referrer_id, referred_id, referred_name, code, status, amount, created_at)
		VALUES (:id, :referrer_id, :referred_id, :referred_name, :code, :status, :amount, :created_at)
	`, ref)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Referral, error) {
	var ref Referral
	err := r.db.GetContext(ctx, &ref, `SELECT * FROM referrals WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

// MarkCompleted advances the referral to completed. The WHERE guard makes
// the transition first-wins: a second caller gets ErrAlreadySettled.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, settledAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE referrals
		SET status = $2, settled_at = $3
		WHERE id = $1 AND status <> $2
	`, id, StatusCompleted, settledAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadySettled
	}
	return nil
}

func (r *Repository) ListByReferrer(ctx context.Context, referrerID uuid.UUID, limit int) ([]Referral, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	refs := []Referral{}
	err := r.db.SelectContext(ctx, &refs, `
		SELECT * FROM referrals
		WHERE referrer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, referrerID, limit)
	return refs, err
}
