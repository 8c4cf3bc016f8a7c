package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/domain/account"
)

// PlanID represents subscription plan tier
type PlanID string

const (
	PlanFree     PlanID = "free"
	PlanSilver   PlanID = "silver"
	PlanGold     PlanID = "gold"
	PlanPlatinum PlanID = "platinum"
)

// Status values for subscription history records
const (
	StatusCompleted = "completed"
)

// Plan is a purchasable tier. The catalog is fixed; prices are rupees.
type Plan struct {
	ID           PlanID          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days"`
}

var plans = []Plan{
	{ID: PlanFree, Name: "Free Plan", Price: decimal.Zero, DurationDays: 0},
	{ID: PlanSilver, Name: "Silver Plan", Price: decimal.NewFromInt(99), DurationDays: 30},
	{ID: PlanGold, Name: "Gold Plan", Price: decimal.NewFromInt(199), DurationDays: 30},
	{ID: PlanPlatinum, Name: "Platinum Plan", Price: decimal.NewFromInt(499), DurationDays: 30},
}

// Plans returns the plan catalog.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan by id.
func PlanByID(id PlanID) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// ValidPlanID reports whether s names a known tier.
func ValidPlanID(s string) bool {
	_, ok := PlanByID(PlanID(s))
	return ok
}

// EffectiveTier derives the tier that benefits checks must use right now.
// There is no background expiry sweep: a paid plan past its expiry simply
// behaves as free at the point of use.
func EffectiveTier(acc *account.Account, now time.Time) PlanID {
	tier := PlanID(acc.SubPlanID)
	if _, ok := PlanByID(tier); !ok {
		return PlanFree
	}
	if tier == PlanFree {
		return PlanFree
	}
	if acc.SubStatus != account.SubStatusActive {
		return PlanFree
	}
	if acc.SubExpiresAt.Valid && now.After(acc.SubExpiresAt.Time) {
		return PlanFree
	}
	return tier
}

// Record is one row of the append-only subscription purchase history,
// distinct from the live subscription fields on the account.
type Record struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	AccountID  uuid.UUID       `db:"account_id" json:"account_id"`
	PlanID     string          `db:"plan_id" json:"plan_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	PaymentRef string          `db:"payment_ref" json:"payment_ref"`
	Status     string          `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	ExpiresAt  time.Time       `db:"expires_at" json:"expires_at"`
}
