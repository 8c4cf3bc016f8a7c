// Package catalog holds the earnable inventory: tasks and rewarded ads.
// Base reward amounts live here; tier multipliers are applied at settlement.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Task struct {
	ID             string          `db:"id" json:"id"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	BaseReward     decimal.Decimal `db:"base_reward" json:"base_reward"`
	Category       string          `db:"category" json:"category"`
	Active         bool            `db:"active" json:"active"`
	CompletedCount int64           `db:"completed_count" json:"completed_count"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type Ad struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	BaseReward  decimal.Decimal `db:"base_reward" json:"base_reward"`
	DurationSec int             `db:"duration_sec" json:"duration_sec"`
	Active      bool            `db:"active" json:"active"`
	WatchCount  int64           `db:"watch_count" json:"watch_count"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
