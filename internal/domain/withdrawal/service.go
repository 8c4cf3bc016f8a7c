package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
	"github.com/earnzy/earnzy-api/internal/pkg/replay"
)

// MinAmount is the smallest cash-out the gateway will carry.
var MinAmount = decimal.NewFromInt(10)

// Ledger applies atomic account mutations and reads. Satisfied by
// account.Repository.
type Ledger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Mutate(ctx context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error)
}

// Store persists withdrawal rows. Satisfied by Repository.
type Store interface {
	Insert(ctx context.Context, w *Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Withdrawal, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Withdrawal, error)
}

// Notifier receives before/after snapshots after a debit commits. Satisfied
// by fraud.Monitor.
type Notifier interface {
	Notify(ctx context.Context, before, after *account.Account)
}

type Service struct {
	store  Store
	ledger Ledger
	guard  *replay.Guard
	clk    clock.Clock
	notify Notifier
}

func NewService(store Store, ledger Ledger, guard *replay.Guard, clk clock.Clock, notify Notifier) *Service {
	return &Service{store: store, ledger: ledger, guard: guard, clk: clk, notify: notify}
}

// Create opens a pending withdrawal. The balance precheck is advisory: the
// authoritative check happens under lock when the withdrawal completes.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, method, detail string) (*Withdrawal, error) {
	if amount.LessThan(MinAmount) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrAmountTooSmall, MinAmount.StringFixed(2))
	}

	acc, err := s.ledger.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.Balance.LessThan(amount) {
		return nil, account.ErrInsufficientBalance
	}

	now := s.clk.Now()
	w := &Withdrawal{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount.Round(2),
		Method:    method,
		Detail:    detail,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, w); err != nil {
		return nil, err
	}

	log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("account_id", accountID.String()).
		Str("amount", w.Amount.StringFixed(2)).
		Str("method", method).
		Msg("withdrawal requested")
	return w, nil
}

// Complete settles a withdrawal after the payout went through. The debit
// carries a unique transaction reference, so redelivery moves money at most
// once; the status transition is guarded separately. Only pending and
// processing withdrawals may complete.
func (s *Service) Complete(ctx context.Context, withdrawalID uuid.UUID) (*Withdrawal, error) {
	w, err := s.store.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if !w.debitable() {
		if w.Status == StatusCompleted {
			return nil, ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("%w: %s cannot complete", ErrInvalidTransition, w.Status)
	}

	replayKey := fmt.Sprintf("withdrawal:%s", withdrawalID)
	if s.guard.Seen(ctx, replayKey) {
		return nil, ErrAlreadyProcessed
	}

	now := s.clk.Now()
	reference := fmt.Sprintf("%s_withdrawal_%s_completed", w.AccountID, w.ID)

	var before account.Account
	after, err := s.ledger.Mutate(ctx, w.AccountID, func(acc *account.Account) (*account.Transaction, error) {
		before = *acc
		if acc.Balance.LessThan(w.Amount) {
			return nil, account.ErrInsufficientBalance
		}
		acc.Balance = acc.Balance.Sub(w.Amount)
		acc.TotalWithdrawn = acc.TotalWithdrawn.Add(w.Amount)

		return &account.Transaction{
			ID:          uuid.New(),
			AccountID:   w.AccountID,
			Amount:      w.Amount,
			Type:        account.TransactionTypeDebit,
			Description: fmt.Sprintf("Withdrawal (%s)", strings.ToUpper(w.Method)),
			Reference:   sql.NullString{String: reference, Valid: true},
			CreatedAt:   now,
		}, nil
	})
	alreadyDebited := errors.Is(err, account.ErrDuplicateReference)
	if err != nil && !alreadyDebited {
		s.guard.Forget(ctx, replayKey)
		return nil, err
	}
	if err == nil && s.notify != nil {
		s.notify.Notify(ctx, &before, after)
	}

	err = s.store.MarkCompleted(ctx, w.ID, now)
	switch {
	case errors.Is(err, ErrAlreadyProcessed):
		if alreadyDebited {
			return nil, ErrAlreadyProcessed
		}
		log.Warn().Str("withdrawal_id", w.ID.String()).Msg("withdrawal transition raced after debit")
	case err != nil:
		// Debit stands; a retry sees the duplicate reference and only redoes
		// the transition.
		s.guard.Forget(ctx, replayKey)
		return nil, err
	}

	w.Status = StatusCompleted
	w.UpdatedAt = now

	log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("account_id", w.AccountID.String()).
		Str("amount", w.Amount.StringFixed(2)).
		Msg("withdrawal completed")
	return w, nil
}

func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Withdrawal, error) {
	return s.store.ListByAccount(ctx, accountID, limit)
}
