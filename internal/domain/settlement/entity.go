// Package settlement turns a completed activity into a credited reward.
// It ties together the catalog, the reward policy, the daily quotas and
// the ledger: every earning in the system flows through SettleActivity.
package settlement

import (
	"github.com/shopspring/decimal"
)

// Kind identifies the activity being settled.
type Kind string

const (
	KindTask    Kind = "task"
	KindAd      Kind = "ad"
	KindCheckin Kind = "checkin"
	KindScratch Kind = "scratch"
)

// Result is what a settled activity paid out.
type Result struct {
	Kind             Kind            `json:"kind"`
	Reward           decimal.Decimal `json:"reward"`
	NewBalance       decimal.Decimal `json:"new_balance"`
	StreakDay        int             `json:"streak_day,omitempty"`
	TreasureUnlocked bool            `json:"treasure_unlocked"`
}
