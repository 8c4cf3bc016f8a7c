package fraud

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
)

// Ledger applies atomic account mutations. Satisfied by account.Repository.
type Ledger interface {
	Mutate(ctx context.Context, id uuid.UUID, fn account.MutateFn) (*account.Account, error)
}

// Store persists flag audit rows. Satisfied by Repository.
type Store interface {
	InsertLog(ctx context.Context, entry *LogEntry) error
}

// Monitor evaluates before/after snapshots of a settled mutation. Every
// failure inside the monitor is logged and swallowed: fraud bookkeeping
// must never fail a settlement that already committed.
type Monitor struct {
	ledger     Ledger
	store      Store
	clk        clock.Clock
	jumpLimit  decimal.Decimal
	maxDevices int
}

func NewMonitor(ledger Ledger, store Store, clk clock.Clock, jumpLimit decimal.Decimal, maxDevices int) *Monitor {
	return &Monitor{
		ledger:     ledger,
		store:      store,
		clk:        clk,
		jumpLimit:  jumpLimit,
		maxDevices: maxDevices,
	}
}

// Notify inspects the snapshots and records any triggered flags.
func (m *Monitor) Notify(ctx context.Context, before, after *account.Account) {
	var reasons []string

	if after.Balance.Sub(before.Balance).GreaterThan(m.jumpLimit) {
		reasons = append(reasons, ReasonRapidBalance)
	}
	if len(after.DeviceIDs) > m.maxDevices {
		reasons = append(reasons, ReasonMultipleDevices)
	}
	if len(reasons) == 0 {
		return
	}

	now := m.clk.Now()
	_, err := m.ledger.Mutate(ctx, after.ID, func(acc *account.Account) (*account.Transaction, error) {
		acc.FraudCount++
		acc.FraudReasons = mergeReasons(acc.FraudReasons, reasons)
		acc.FraudLastChecked = sql.NullTime{Time: now, Valid: true}
		return nil, nil
	})
	if err != nil {
		log.Error().Err(err).Str("account_id", after.ID.String()).Msg("failed to record fraud flags")
	}

	for _, reason := range reasons {
		entry := &LogEntry{
			ID:            uuid.New(),
			AccountID:     after.ID,
			Reason:        reason,
			BalanceBefore: before.Balance,
			BalanceAfter:  after.Balance,
			DeviceCount:   len(after.DeviceIDs),
			CreatedAt:     now,
		}
		if err := m.store.InsertLog(ctx, entry); err != nil {
			log.Error().Err(err).Str("account_id", after.ID.String()).Str("reason", reason).Msg("failed to append fraud log")
		}
	}

	log.Warn().
		Str("account_id", after.ID.String()).
		Strs("reasons", reasons).
		Str("balance_before", before.Balance.StringFixed(2)).
		Str("balance_after", after.Balance.StringFixed(2)).
		Msg("account flagged")
}

// mergeReasons unions new reasons into the stored set, preserving order of
// first occurrence.
func mergeReasons(existing []string, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r] = true
	}
	merged := existing
	for _, r := range incoming {
		if !seen[r] {
			merged = append(merged, r)
			seen[r] = true
		}
	}
	return merged
}
