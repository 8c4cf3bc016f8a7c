package withdrawal

import "github.com/shopspring/decimal"

// CreateRequest opens a pending withdrawal for the authenticated account.
type CreateRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,money"`
	Method string          `json:"method" validate:"required,withdraw_method"`
	Detail string          `json:"detail" validate:"required,min=3,max=128"`
}
