// Package reward computes reward amounts. It is pure policy: no I/O, no
// clock, and every returned amount is non-negative with 2-place rounding.
package reward

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/subscription"
)

// Per-tier multipliers differ by activity kind.
var (
	taskMultipliers = map[subscription.PlanID]decimal.Decimal{
		subscription.PlanFree:     decimal.NewFromFloat(1.0),
		subscription.PlanSilver:   decimal.NewFromFloat(1.2),
		subscription.PlanGold:     decimal.NewFromFloat(1.3),
		subscription.PlanPlatinum: decimal.NewFromFloat(1.5),
	}
	adMultipliers = map[subscription.PlanID]decimal.Decimal{
		subscription.PlanFree:     decimal.NewFromFloat(1.0),
		subscription.PlanSilver:   decimal.NewFromFloat(1.1),
		subscription.PlanGold:     decimal.NewFromFloat(1.2),
		subscription.PlanPlatinum: decimal.NewFromFloat(1.3),
	}
	checkinMultipliers = map[subscription.PlanID]decimal.Decimal{
		subscription.PlanFree:     decimal.NewFromFloat(1.0),
		subscription.PlanSilver:   decimal.NewFromFloat(1.1),
		subscription.PlanGold:     decimal.NewFromFloat(1.2),
		subscription.PlanPlatinum: decimal.NewFromFloat(1.3),
	}
)

type scratchRange struct {
	min, max decimal.Decimal
}

var scratchRanges = map[subscription.PlanID]scratchRange{
	subscription.PlanFree:     {decimal.NewFromFloat(0.10), decimal.NewFromFloat(0.50)},
	subscription.PlanSilver:   {decimal.NewFromFloat(0.10), decimal.NewFromFloat(0.50)},
	subscription.PlanGold:     {decimal.NewFromFloat(0.15), decimal.NewFromFloat(0.75)},
	subscription.PlanPlatinum: {decimal.NewFromFloat(0.20), decimal.NewFromFloat(1.00)},
}

// DefaultReferralBonus is credited for a completed referral unless the
// referral record carries its own amount.
var DefaultReferralBonus = decimal.NewFromFloat(2.00)

func multiplierFor(table map[subscription.PlanID]decimal.Decimal, tier subscription.PlanID) decimal.Decimal {
	if m, ok := table[tier]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// TaskReward is the task base reward scaled by the tier's task multiplier.
func TaskReward(base decimal.Decimal, tier subscription.PlanID) decimal.Decimal {
	return clamp(base.Mul(multiplierFor(taskMultipliers, tier)).Round(2))
}

// AdReward is the ad base reward scaled by the tier's ad multiplier.
func AdReward(base decimal.Decimal, tier subscription.PlanID) decimal.Decimal {
	return clamp(base.Mul(multiplierFor(adMultipliers, tier)).Round(2))
}

// CheckinBase returns the streak-tiered check-in base amount for the given
// streak day (the day being checked in, not the previous streak length).
func CheckinBase(streakDay int) decimal.Decimal {
	switch {
	case streakDay >= 30:
		return decimal.NewFromFloat(1.00)
	case streakDay >= 7:
		return decimal.NewFromFloat(0.50)
	case streakDay >= 3:
		return decimal.NewFromFloat(0.30)
	default:
		return decimal.NewFromFloat(0.20)
	}
}

// CheckinReward is the streak-tiered base scaled by the tier's check-in
// multiplier.
func CheckinReward(streakDay int, tier subscription.PlanID) decimal.Decimal {
	return clamp(CheckinBase(streakDay).Mul(multiplierFor(checkinMultipliers, tier)).Round(2))
}

// Rand yields uniform values in [0,1). Injectable for tests; statistical
// uniformity is all that matters, reproducibility is not required.
type Rand func() float64

// DefaultRand draws from the shared math/rand source.
func DefaultRand() float64 { return rand.Float64() }

// ScratchReward draws a uniform amount from the tier's range, rounded to
// 2 decimal places. Both range endpoints are reachable after rounding.
func ScratchReward(tier subscription.PlanID, rng Rand) decimal.Decimal {
	r, ok := scratchRanges[tier]
	if !ok {
		r = scratchRanges[subscription.PlanFree]
	}
	if rng == nil {
		rng = DefaultRand
	}
	span := r.max.Sub(r.min)
	draw := decimal.NewFromFloat(rng()).Mul(span)
	return clamp(r.min.Add(draw).Round(2))
}

// ReferralBonus returns the override when the referral record carries one,
// otherwise the default bonus.
func ReferralBonus(override decimal.Decimal) decimal.Decimal {
	if override.IsPositive() {
		return clamp(override.Round(2))
	}
	return DefaultReferralBonus
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
