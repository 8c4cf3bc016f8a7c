package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
	"github.com/earnzy/earnzy-api/internal/pkg/replay"
)

// Ledger applies atomic account mutations. Satisfied by account.Repository.
type Ledger interface {
	Mutate(ctx context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error)
}

// Store persists subscription purchase history. Satisfied by Repository.
type Store interface {
	InsertRecord(ctx context.Context, rec *Record) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]Record, error)
}

// Notifier receives before/after snapshots after an activation commits.
// Satisfied by fraud.Monitor.
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

// SettlePayment activates a plan after a captured payment: it overwrites the
// live subscription on the account, appends a history record and a debit
// transaction for the price paid. The balance itself is untouched: the money
// moved through the payment gateway, not the ledger. Redelivery of the same
// payment reference settles at most once.
func (s *Service) SettlePayment(ctx context.Context, accountID uuid.UUID, planID PlanID, paymentRef string, amountPaid decimal.Decimal) error {
	plan, ok := PlanByID(planID)
	if !ok {
		return ErrPlanNotFound
	}
	if plan.ID == PlanFree {
		return ErrPlanNotPayable
	}
	if paymentRef == "" {
		return fmt.Errorf("%w: missing payment reference", ErrPlanNotPayable)
	}

	replayKey := fmt.Sprintf("payment:%s", paymentRef)
	if s.guard.Seen(ctx, replayKey) {
		log.Info().Str("payment_ref", paymentRef).Msg("duplicate payment webhook suppressed")
		return nil
	}

	now := s.clk.Now()
	expiresAt := now.AddDate(0, 0, plan.DurationDays)
	reference := fmt.Sprintf("%s_subscription_%s", accountID, paymentRef)

	var before account.Account
	after, err := s.ledger.Mutate(ctx, accountID, func(acc *account.Account) (*account.Transaction, error) {
		before = *acc
		acc.SubPlanID = string(plan.ID)
		acc.SubStatus = account.SubStatusActive
		acc.SubPurchasedAt = sql.NullTime{Time: now, Valid: true}
		acc.SubExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
		acc.SubPaymentRef = sql.NullString{String: paymentRef, Valid: true}

		return &account.Transaction{
			ID:          uuid.New(),
			AccountID:   accountID,
			Amount:      amountPaid,
			Type:        account.TransactionTypeDebit,
			Description: fmt.Sprintf("%s Plan Subscription", strings.ToUpper(string(plan.ID))),
			Reference:   sql.NullString{String: reference, Valid: true},
			CreatedAt:   now,
		}, nil
	})
	if err != nil {
		if errors.Is(err, account.ErrDuplicateReference) {
			log.Info().Str("payment_ref", paymentRef).Msg("payment already settled")
			return nil
		}
		s.guard.Forget(ctx, replayKey)
		return err
	}
	if s.notify != nil {
		s.notify.Notify(ctx, &before, after)
	}

	rec := &Record{
		ID:         uuid.New(),
		AccountID:  accountID,
		PlanID:     string(plan.ID),
		Amount:     amountPaid,
		PaymentRef: paymentRef,
		Status:     StatusCompleted,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
	}
	if err := s.store.InsertRecord(ctx, rec); err != nil && !errors.Is(err, ErrAlreadyProcessed) {
		// The live subscription is already active; history is best effort.
		log.Error().Err(err).Str("payment_ref", paymentRef).Msg("failed to append subscription record")
	}

	log.Info().
		Str("account_id", accountID.String()).
		Str("plan_id", string(plan.ID)).
		Str("payment_ref", paymentRef).
		Str("amount", amountPaid.StringFixed(2)).
		Msg("subscription activated")
	return nil
}

// History returns the account's purchase records, newest first.
func (s *Service) History(ctx context.Context, accountID uuid.UUID, limit int) ([]Record, error) {
	return s.store.ListByAccount(ctx, accountID, limit)
}
