// Package withdrawal handles cash-out requests. Money only leaves the
// ledger on the completed transition; pending and rejected rows never touch
// the balance.
package withdrawal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

type Withdrawal struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	AccountID uuid.UUID       `db:"account_id" json:"account_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Method    string          `db:"method" json:"method"`
	Detail    string          `db:"detail" json:"detail"`
	Status    string          `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// debitable reports whether the completed transition may fire from this
// status.
func (w *Withdrawal) debitable() bool {
	return w.Status == StatusPending || w.Status == StatusProcessing
}
