// Package quota enforces the per-day activity caps and owns the daily
// counter reset. Checks run against the locked account row inside a
// settlement, so a cap can never be raced past by concurrent requests.
package quota

import (
	"fmt"
	"time"

	"github.com/earnzy/earnzy-api/internal/domain/subscription"
	"github.com/earnzy/earnzy-api/internal/pkg/clock"
)

const (
	// Soft caps drive UI progress bars; they only reject when enforcement
	// is switched on.
	SoftDailyTaskCap = 10
	SoftDailyAdCap   = 10

	// Treasure-box unlock thresholds (cross-activity OR condition).
	TreasureTaskThreshold = 3
	TreasureAdThreshold   = 5

	// Platinum scratch allowance, effectively unlimited.
	unlimitedScratches = 999
)

// ScratchCap is the hard per-day scratch limit for a tier.
func ScratchCap(tier subscription.PlanID) int {
	switch tier {
	case subscription.PlanSilver:
		return 2
	case subscription.PlanGold:
		return 3
	case subscription.PlanPlatinum:
		return unlimitedScratches
	default:
		return 1
	}
}

// Limits evaluates daily caps. The zero value enforces only the hard caps.
type Limits struct {
	EnforceSoftCaps bool
}

func (l Limits) CanCompleteTask(tasksToday int) error {
	if l.EnforceSoftCaps && tasksToday >= SoftDailyTaskCap {
		return fmt.Errorf("%w: daily task cap reached", ErrQuotaExceeded)
	}
	return nil
}

func (l Limits) CanWatchAd(adsToday int) error {
	if l.EnforceSoftCaps && adsToday >= SoftDailyAdCap {
		return fmt.Errorf("%w: daily ad cap reached", ErrQuotaExceeded)
	}
	return nil
}

// CanScratch rejects once the tier's hard cap is spent for the day.
func (l Limits) CanScratch(tier subscription.PlanID, scratchesToday int) error {
	if scratchesToday >= ScratchCap(tier) {
		return fmt.Errorf("%w: no scratch cards left today", ErrQuotaExceeded)
	}
	return nil
}

// CanCheckin rejects a second check-in on the same calendar day.
func (l Limits) CanCheckin(clk clock.Clock, lastCheckinAt time.Time, hasCheckedIn bool, now time.Time) error {
	if hasCheckedIn && clock.SameDay(clk, lastCheckinAt, now) {
		return fmt.Errorf("%w: already checked in today", ErrQuotaExceeded)
	}
	return nil
}

// TreasureUnlocked reports whether today's activity crosses either
// treasure-box threshold.
func TreasureUnlocked(tasksToday, adsToday int) bool {
	return tasksToday >= TreasureTaskThreshold || adsToday >= TreasureAdThreshold
}
