package referral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/reward"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
)

// Ledger applies atomic account mutations. Satisfied by account.Repository.
type Ledger interface {
	Mutate(ctx context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error)
}

// Store persists referral records. Satisfied by Repository.
type Store interface {
	ResolveCode(ctx context.Context, code string) (uuid.UUID, error)
	Insert(ctx context.Context, ref *Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, settledAt time.Time) error
	ListByReferrer(ctx context.Context, referrerID uuid.UUID, limit int) ([]Referral, error)
}

// Notifier receives before/after snapshots after a credit commits. Satisfied
// by fraud.Monitor.
type Notifier interface {
	Notify(ctx context.Context, before, after *account.Account)
}

type Service struct {
	store  Store
	ledger Ledger
	clk    clock.Clock
	bonus  decimal.Decimal
	notify Notifier
}

// NewService wires the referral flow. bonus is the configured default; a
// non-positive value falls back to the policy default.
func NewService(store Store, ledger Ledger, clk clock.Clock, bonus decimal.Decimal, notify Notifier) *Service {
	return &Service{store: store, ledger: ledger, clk: clk, bonus: bonus, notify: notify}
}

// RecordSignup creates the referral record when a new user signs up with a
// code. No money moves yet; the bonus waits for Settle.
func (s *Service) RecordSignup(ctx context.Context, code string, referredID uuid.UUID, referredName string) error {
	referrerID, err := s.store.ResolveCode(ctx, code)
	if err != nil {
		return err
	}
	if referrerID == referredID {
		return ErrSelfReferral
	}

	ref := &Referral{
		ID:           uuid.New(),
		ReferrerID:   referrerID,
		ReferredID:   referredID,
		ReferredName: referredName,
		Code:         code,
		Status:       StatusSignedUp,
		Amount:       s.bonus,
		CreatedAt:    s.clk.Now(),
	}
	if err := s.store.Insert(ctx, ref); err != nil {
		return err
	}

	log.Info().
		Str("referral_id", ref.ID.String()).
		Str("referrer_id", referrerID.String()).
		Str("referred_id", referredID.String()).
		Msg("referral recorded")
	return nil
}

// Settle pays the referrer's bonus for one referral. The credit carries a
// unique transaction reference, so money moves at most once no matter how
// often Settle is retried; the status transition is guarded separately and
// reports ErrAlreadySettled on a true duplicate.
func (s *Service) Settle(ctx context.Context, referralID uuid.UUID) (*Referral, error) {
	ref, err := s.store.GetByID(ctx, referralID)
	if err != nil {
		return nil, err
	}
	if ref.Status == StatusCompleted {
		return nil, ErrAlreadySettled
	}

	bonus := reward.ReferralBonus(ref.Amount)
	now := s.clk.Now()
	reference := fmt.Sprintf("%s_referral_%s", ref.ReferrerID, ref.ID)

	var before account.Account
	after, err := s.ledger.Mutate(ctx, ref.ReferrerID, func(acc *account.Account) (*account.Transaction, error) {
		before = *acc
		acc.Balance = acc.Balance.Add(bonus)
		acc.TotalEarned = acc.TotalEarned.Add(bonus)
		acc.ReferralEarnings = acc.ReferralEarnings.Add(bonus)
		acc.TotalReferrals++

		return &account.Transaction{
			ID:          uuid.New(),
			AccountID:   ref.ReferrerID,
			Amount:      bonus,
			Type:        account.TransactionTypeCredit,
			Description: fmt.Sprintf("Referral Bonus - %s", ref.ReferredName),
			Reference:   sql.NullString{String: reference, Valid: true},
			CreatedAt:   now,
		}, nil
	})
	alreadyCredited := errors.Is(err, account.ErrDuplicateReference)
	if err != nil && !alreadyCredited {
		return nil, err
	}
	if err == nil && s.notify != nil {
		s.notify.Notify(ctx, &before, after)
	}

	err = s.store.MarkCompleted(ctx, ref.ID, now)
	switch {
	case errors.Is(err, ErrAlreadySettled):
		if alreadyCredited {
			return nil, ErrAlreadySettled
		}
		// Credit landed but another caller finished the transition first.
		log.Warn().Str("referral_id", ref.ID.String()).Msg("referral transition raced after credit")
	case err != nil:
		// Credit stands; a retry will see the duplicate reference and only
		// redo the transition.
		return nil, err
	}

	ref.Status = StatusCompleted
	ref.SettledAt = sql.NullTime{Time: now, Valid: true}

	log.Info().
		Str("referral_id", ref.ID.String()).
		Str("referrer_id", ref.ReferrerID.String()).
		Str("amount", bonus.StringFixed(2)).
		Msg("referral settled")
	return ref, nil
}

func (s *Service) ListByReferrer(ctx context.Context, referrerID uuid.UUID, limit int) ([]Referral, error) {
	return s.store.ListByReferrer(ctx, referrerID, limit)
}
