// Package referral tracks invite codes and pays the referrer's bonus once
// the invited user proves activity.
package referral

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Referral lifecycle, forward-only.
const (
	StatusSignedUp    = "signed_up"
	StatusPendingTask = "pending_task"
	StatusCompleted   = "completed"
)

// Referral links a referrer to a user who signed up with their code. Amount
// is an optional per-referral override; zero means the default bonus.
type Referral struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ReferrerID   uuid.UUID       `db:"referrer_id" json:"referrer_id"`
	ReferredID   uuid.UUID       `db:"referred_id" json:"referred_id"`
	ReferredName string          `db:"referred_name" json:"referred_name"`
	Code         string          `db:"code" json:"code"`
	Status       string          `db:"status" json:"status"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	SettledAt    sql.NullTime    `db:"settled_at" json:"settled_at,omitempty"`
}
