package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const mutateAttempts = 3

// MutateFn inspects and modifies the locked account row. Returning a
// non-nil Transaction appends it to the ledger in the same database
// transaction. Returning an error aborts the whole mutation.
type MutateFn func(acc *Account) (*Transaction, error)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account together with its signup-bonus transaction.
func (r *Repository) Create(ctx context.Context, acc *Account, signupTxn *Transaction) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO accounts (
			id, mobile, balance, total_earned, total_withdrawn,
			sub_plan_id, sub_status,
			streak_day, longest_streak, total_checkins,
			tasks_completed_today, ads_watched_today, scratches_today, treasure_unlocked,
			total_tasks_completed, total_referrals, referral_earnings,
			fraud_count, fraud_reasons, device_ids, referral_code,
			created_at, last_login_at
		) VALUES (
			:id, :mobile, :balance, :total_earned, :total_withdrawn,
			:sub_plan_id, :sub_status,
			:streak_day, :longest_streak, :total_checkins,
			:tasks_completed_today, :ads_watched_today, :scratches_today, :treasure_unlocked,
			:total_tasks_completed, :total_referrals, :referral_earnings,
			:fraud_count, :fraud_reasons, :device_ids, :referral_code,
			:created_at, :last_login_at
		)
	`, acc)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountExists
		}
		return err
	}

	if signupTxn != nil {
		if err := r.InsertTransactionTx(ctx, tx, signupTxn); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	var acc Account
	err := r.db.GetContext(ctx, &acc, `SELECT * FROM accounts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Mutate runs fn against the account row locked FOR UPDATE and persists the
// result atomically. Serialization failures are retried a bounded number of
// times before surfacing as ErrConcurrencyConflict.
func (r *Repository) Mutate(ctx context.Context, id uuid.UUID, fn MutateFn) (*Account, error) {
	var lastErr error
	for attempt := 0; attempt < mutateAttempts; attempt++ {
		acc, err := r.mutateOnce(ctx, id, fn)
		if err == nil {
			return acc, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, errors.Join(ErrConcurrencyConflict, lastErr)
}

func (r *Repository) mutateOnce(ctx context.Context, id uuid.UUID, fn MutateFn) (*Account, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	acc, err := r.MutateTx(ctx, tx, id, fn)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return acc, nil
}

// MutateTx is Mutate within a caller-owned transaction. Exposed for callers
// that need to change another table atomically with the account row.
func (r *Repository) MutateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, fn MutateFn) (*Account, error) {
	var acc Account
	err := tx.GetContext(ctx, &acc, `SELECT * FROM accounts WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	prevEarned := acc.TotalEarned
	prevWithdrawn := acc.TotalWithdrawn

	txn, err := fn(&acc)
	if err != nil {
		return nil, err
	}

	// Ledger invariants: balance never negative, lifetime sums never shrink.
	if acc.Balance.IsNegative() {
		return nil, ErrInsufficientBalance
	}
	if acc.TotalEarned.LessThan(prevEarned) || acc.TotalWithdrawn.LessThan(prevWithdrawn) {
		return nil, ErrInvalidMutation
	}

	if err := r.saveTx(ctx, tx, &acc); err != nil {
		return nil, err
	}

	if txn != nil {
		if err := r.InsertTransactionTx(ctx, tx, txn); err != nil {
			return nil, err
		}
	}

	return &acc, nil
}

func (r *Repository) saveTx(ctx context.Context, tx *sqlx.Tx, acc *Account) error {
	_, err := tx.NamedExecContext(ctx, `
		UPDATE accounts SET
			mobile = :mobile,
			balance = :balance,
			total_earned = :total_earned,
			total_withdrawn = :total_withdrawn,
			sub_plan_id = :sub_plan_id,
			sub_status = :sub_status,
			sub_purchased_at = :sub_purchased_at,
			sub_expires_at = :sub_expires_at,
			sub_payment_ref = :sub_payment_ref,
			streak_day = :streak_day,
			last_checkin_at = :last_checkin_at,
			longest_streak = :longest_streak,
			total_checkins = :total_checkins,
			tasks_completed_today = :tasks_completed_today,
			ads_watched_today = :ads_watched_today,
			scratches_today = :scratches_today,
			treasure_unlocked = :treasure_unlocked,
			total_tasks_completed = :total_tasks_completed,
			total_referrals = :total_referrals,
			referral_earnings = :referral_earnings,
			fraud_count = :fraud_count,
			fraud_reasons = :fraud_reasons,
			fraud_last_checked = :fraud_last_checked,
			device_ids = :device_ids,
			referral_code = :referral_code,
			last_login_at = :last_login_at
		WHERE id = :id
	`, acc)
	return err
}

// InsertTransactionTx appends a ledger row. A reference collision means the
// originating event was already settled.
func (r *Repository) InsertTransactionTx(ctx context.Context, tx *sqlx.Tx, txn *Transaction) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO transactions (id, account_id, amount, type, description, reference, task_id, ad_id, created_at)
		VALUES (:id, :account_id, :amount, :type, :description, :reference, :task_id, :ad_id, :created_at)
	`, txn)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// ListTransactions returns the account's ledger rows, newest first.
func (r *Repository) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID); err != nil {
		return nil, 0, err
	}

	txns := []Transaction{}
	err := r.db.SelectContext(ctx, &txns, `
		SELECT * FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	// serialization_failure, deadlock_detected
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
