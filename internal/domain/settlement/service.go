package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/catalog"
	"github.com/earnzy/earnzy-api/internal/domain/quota"
	"github.com/earnzy/earnzy-api/internal/domain/reward"
	"github.com/earnzy/earnzy-api/internal/domain/subscription"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
)

// Ledger applies atomic account mutations. Satisfied by account.Repository.
type Ledger interface {
	Mutate(ctx context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error)
}

// Catalog resolves earnable items and records advisory counters. Satisfied
// by catalog.Service.
type Catalog interface {
	GetActiveTask(ctx context.Context, id string) (*catalog.Task, error)
	GetActiveAd(ctx context.Context, id string) (*catalog.Ad, error)
	RecordTaskCompleted(ctx context.Context, id string)
	RecordAdWatched(ctx context.Context, id string)
}

// Notifier receives before/after snapshots after a settlement commits.
// Satisfied by fraud.Monitor.
type Notifier interface {
	Notify(ctx context.Context, before, after *account.Account)
}

type Service struct {
	ledger  Ledger
	catalog Catalog
	notify  Notifier
	limits  quota.Limits
	clk     clock.Clock
	rng     reward.Rand
}

func NewService(ledger Ledger, cat Catalog, notify Notifier, limits quota.Limits, clk clock.Clock, rng reward.Rand) *Service {
	if rng == nil {
		rng = reward.DefaultRand
	}
	return &Service{ledger: ledger, catalog: cat, notify: notify, limits: limits, clk: clk, rng: rng}
}

// SettleActivity credits the reward for one completed activity. Quota checks,
// counter bumps, streak bookkeeping, the treasure-box unlock and the ledger
// credit all commit in one transaction on the locked account row; catalog
// counters and fraud checks run after commit and cannot undo it.
func (s *Service) SettleActivity(ctx context.Context, accountID uuid.UUID, kind Kind, itemID string) (*Result, error) {
	var (
		base  decimal.Decimal
		title string
	)
	switch kind {
	case KindTask:
		if itemID == "" {
			return nil, fmt.Errorf("%w: task id required", ErrMissingItemID)
		}
		t, err := s.catalog.GetActiveTask(ctx, itemID)
		if err != nil {
			return nil, err
		}
		base, title = t.BaseReward, t.Title
	case KindAd:
		if itemID == "" {
			return nil, fmt.Errorf("%w: ad id required", ErrMissingItemID)
		}
		a, err := s.catalog.GetActiveAd(ctx, itemID)
		if err != nil {
			return nil, err
		}
		base, title = a.BaseReward, a.Title
	case KindCheckin, KindScratch:
		// No catalog item; amounts come entirely from policy.
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	now := s.clk.Now()
	var (
		before account.Account
		res    Result
	)

	after, err := s.ledger.Mutate(ctx, accountID, func(acc *account.Account) (*account.Transaction, error) {
		before = *acc
		tier := subscription.EffectiveTier(acc, now)

		txn := &account.Transaction{
			ID:        uuid.New(),
			AccountID: accountID,
			Type:      account.TransactionTypeCredit,
			CreatedAt: now,
		}

		var rwd decimal.Decimal
		switch kind {
		case KindTask:
			if err := s.limits.CanCompleteTask(acc.TasksCompletedToday); err != nil {
				return nil, err
			}
			rwd = reward.TaskReward(base, tier)
			acc.TasksCompletedToday++
			acc.TotalTasksCompleted++
			txn.Description = fmt.Sprintf("Task: %s", title)
			txn.TaskID = sql.NullString{String: itemID, Valid: true}

		case KindAd:
			if err := s.limits.CanWatchAd(acc.AdsWatchedToday); err != nil {
				return nil, err
			}
			rwd = reward.AdReward(base, tier)
			acc.AdsWatchedToday++
			txn.Description = fmt.Sprintf("Ad: %s", title)
			txn.AdID = sql.NullString{String: itemID, Valid: true}

		case KindCheckin:
			if err := s.limits.CanCheckin(s.clk, acc.LastCheckinAt.Time, acc.LastCheckinAt.Valid, now); err != nil {
				return nil, err
			}
			streakDay := 1
			if acc.LastCheckinAt.Valid && clock.IsYesterday(s.clk, acc.LastCheckinAt.Time, now) {
				streakDay = acc.StreakDay + 1
			}
			rwd = reward.CheckinReward(streakDay, tier)
			acc.StreakDay = streakDay
			acc.LastCheckinAt = sql.NullTime{Time: now, Valid: true}
			acc.TotalCheckins++
			if streakDay > acc.LongestStreak {
				acc.LongestStreak = streakDay
			}
			txn.Description = fmt.Sprintf("Daily Check-in (Day %d)", streakDay)
			// One check-in per calendar day, enforced by the ledger too.
			txn.Reference = sql.NullString{
				String: fmt.Sprintf("%s_checkin_%s", accountID, s.clk.DayOf(now).Format("2006-01-02")),
				Valid:  true,
			}
			res.StreakDay = streakDay

		case KindScratch:
			if err := s.limits.CanScratch(tier, acc.ScratchesToday); err != nil {
				return nil, err
			}
			rwd = reward.ScratchReward(tier, s.rng)
			acc.ScratchesToday++
			txn.Description = "Scratch Card Reward"
		}

		acc.Balance = acc.Balance.Add(rwd)
		acc.TotalEarned = acc.TotalEarned.Add(rwd)
		txn.Amount = rwd

		if !acc.TreasureUnlocked && quota.TreasureUnlocked(acc.TasksCompletedToday, acc.AdsWatchedToday) {
			acc.TreasureUnlocked = true
		}

		res.Kind = kind
		res.Reward = rwd
		res.NewBalance = acc.Balance
		res.TreasureUnlocked = acc.TreasureUnlocked
		return txn, nil
	})
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindTask:
		s.catalog.RecordTaskCompleted(ctx, itemID)
	case KindAd:
		s.catalog.RecordAdWatched(ctx, itemID)
	}
	s.notify.Notify(ctx, &before, after)

	return &res, nil
}
