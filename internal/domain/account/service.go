package account

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/pkg/clock"
)

const referralCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Store is the persistence surface of the ledger aggregate. Satisfied by
// Repository.
type Store interface {
	Create(ctx context.Context, acc *Account, signupTxn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Mutate(ctx context.Context, id uuid.UUID, fn MutateFn) (*Account, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]Transaction, int, error)
}

// Notifier receives before/after snapshots after a mutation commits.
// Satisfied by fraud.Monitor.
type Notifier interface {
	Notify(ctx context.Context, before, after *Account)
}

type Service struct {
	repo        Store
	clk         clock.Clock
	signupBonus decimal.Decimal
	notify      Notifier
}

func NewService(repo Store, clk clock.Clock, signupBonus decimal.Decimal, notify Notifier) *Service {
	return &Service{repo: repo, clk: clk, signupBonus: signupBonus, notify: notify}
}

// Create opens a ledger account for a freshly signed-up user, credits the
// signup bonus and records the matching transaction.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, mobile, deviceID string) (*Account, error) {
	now := s.clk.Now()

	acc := &Account{
		ID:           userID,
		Balance:      s.signupBonus,
		TotalEarned:  s.signupBonus,
		SubPlanID:    "free",
		SubStatus:    SubStatusActive,
		FraudReasons: []string{},
		DeviceIDs:    []string{},
		ReferralCode: sql.NullString{String: generateReferralCode(6), Valid: true},
		CreatedAt:    now,
		LastLoginAt:  sql.NullTime{Time: now, Valid: true},
	}
	if mobile != "" {
		acc.Mobile = sql.NullString{String: mobile, Valid: true}
	}
	if deviceID != "" {
		acc.DeviceIDs = []string{deviceID}
	}

	signupTxn := &Transaction{
		ID:          uuid.New(),
		AccountID:   userID,
		Amount:      s.signupBonus,
		Type:        TransactionTypeCredit,
		Description: "Signup Bonus",
		Reference:   sql.NullString{String: fmt.Sprintf("%s_signup", userID), Valid: true},
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, acc, signupTxn); err != nil {
		return nil, err
	}

	log.Info().
		Str("account_id", userID.String()).
		Str("signup_bonus", s.signupBonus.StringFixed(2)).
		Msg("account created")
	return acc, nil
}

func (s *Service) GetSummary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSummary(acc), nil
}

// RegisterDevice records a device identifier on the account. Registering a
// known device is a no-op. The fraud monitor sees the mutation after commit,
// so a device list grown past the limit flags immediately.
func (s *Service) RegisterDevice(ctx context.Context, id uuid.UUID, deviceID string) (*Account, error) {
	if deviceID == "" {
		return s.repo.GetByID(ctx, id)
	}
	var before Account
	after, err := s.repo.Mutate(ctx, id, func(acc *Account) (*Transaction, error) {
		before = *acc
		if !acc.HasDevice(deviceID) {
			acc.DeviceIDs = append(acc.DeviceIDs, deviceID)
		}
		acc.LastLoginAt = sql.NullTime{Time: s.clk.Now(), Valid: true}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.Notify(ctx, &before, after)
	}
	return after, nil
}

func (s *Service) ListTransactions(ctx context.Context, id uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, id, limit, offset)
}

func generateReferralCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = referralCodeCharset[rand.Intn(len(referralCodeCharset))]
	}
	return string(b)
}
