// Package fraud watches settled mutations for suspicious patterns. It is
// observational: flags are recorded on the account and in the audit log,
// but nothing is blocked or reversed here.
package fraud

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reasons recorded on flagged accounts. Stored as-is, so treat as stable.
const (
	ReasonRapidBalance    = "Rapid balance increase"
	ReasonMultipleDevices = "Multiple devices detected"
)

// LogEntry is one audit row for a flagged mutation.
type LogEntry struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AccountID     uuid.UUID       `db:"account_id" json:"account_id"`
	Reason        string          `db:"reason" json:"reason"`
	BalanceBefore decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balance_after"`
	DeviceCount   int             `db:"device_count" json:"device_count"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
