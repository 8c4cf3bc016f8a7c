package account

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SubStatus values for the live subscription held on the account row.
const (
	SubStatusActive  = "active"
	SubStatusExpired = "expired"
)

// Account is the per-user ledger aggregate. Every monetary mutation goes
// through Repository.Mutate so the row is only ever changed under lock.
type Account struct {
	ID     uuid.UUID      `db:"id" json:"id"`
	Mobile sql.NullString `db:"mobile" json:"mobile,omitempty"`

	Balance        decimal.Decimal `db:"balance" json:"balance"`
	TotalEarned    decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalWithdrawn decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`

	// Live subscription state. History lives in subscription_records.
	SubPlanID      string         `db:"sub_plan_id" json:"sub_plan_id"`
	SubStatus      string         `db:"sub_status" json:"sub_status"`
	SubPurchasedAt sql.NullTime   `db:"sub_purchased_at" json:"sub_purchased_at,omitempty"`
	SubExpiresAt   sql.NullTime   `db:"sub_expires_at" json:"sub_expires_at,omitempty"`
	SubPaymentRef  sql.NullString `db:"sub_payment_ref" json:"-"`

	// Check-in streak
	StreakDay     int          `db:"streak_day" json:"streak_day"`
	LastCheckinAt sql.NullTime `db:"last_checkin_at" json:"last_checkin_at,omitempty"`
	LongestStreak int          `db:"longest_streak" json:"longest_streak"`
	TotalCheckins int          `db:"total_checkins" json:"total_checkins"`

	// Per-day counters, zeroed by the daily reset
	TasksCompletedToday int  `db:"tasks_completed_today" json:"tasks_completed_today"`
	AdsWatchedToday     int  `db:"ads_watched_today" json:"ads_watched_today"`
	ScratchesToday      int  `db:"scratches_today" json:"scratches_today"`
	TreasureUnlocked    bool `db:"treasure_unlocked" json:"treasure_unlocked"`

	// Lifetime counters
	TotalTasksCompleted int             `db:"total_tasks_completed" json:"total_tasks_completed"`
	TotalReferrals      int             `db:"total_referrals" json:"total_referrals"`
	ReferralEarnings    decimal.Decimal `db:"referral_earnings" json:"referral_earnings"`

	// Fraud state, written only by the fraud monitor
	FraudCount       int            `db:"fraud_count" json:"fraud_count"`
	FraudReasons     pq.StringArray `db:"fraud_reasons" json:"fraud_reasons"`
	FraudLastChecked sql.NullTime   `db:"fraud_last_checked" json:"fraud_last_checked,omitempty"`

	DeviceIDs    pq.StringArray `db:"device_ids" json:"device_ids"`
	ReferralCode sql.NullString `db:"referral_code" json:"referral_code,omitempty"`

	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	LastLoginAt sql.NullTime `db:"last_login_at" json:"last_login_at,omitempty"`
}

// HasDevice reports whether the device id is already registered.
func (a *Account) HasDevice(deviceID string) bool {
	for _, d := range a.DeviceIDs {
		if d == deviceID {
			return true
		}
	}
	return false
}

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Transaction is an immutable ledger row. Reference, when set, is unique and
// carries the idempotency key of the originating event.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	AccountID   uuid.UUID       `db:"account_id" json:"account_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Type        TransactionType `db:"type" json:"type"`
	Description string          `db:"description" json:"description"`
	Reference   sql.NullString  `db:"reference" json:"reference,omitempty"`
	TaskID      sql.NullString  `db:"task_id" json:"task_id,omitempty"`
	AdID        sql.NullString  `db:"ad_id" json:"ad_id,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
