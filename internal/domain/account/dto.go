package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest is the signup payload forwarded after authentication.
type CreateRequest struct {
	Mobile       string `json:"mobile" validate:"omitempty,e164"`
	DeviceID     string `json:"device_id" validate:"omitempty,max=128"`
	ReferralCode string `json:"referral_code" validate:"omitempty,len=6"`
}

type RegisterDeviceRequest struct {
	DeviceID string `json:"device_id" validate:"required,max=128"`
}

// Summary is the read-only projection served to the UI.
type Summary struct {
	AccountID      uuid.UUID       `json:"account_id"`
	Balance        decimal.Decimal `json:"balance"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`

	PlanID       string     `json:"plan_id"`
	PlanStatus   string     `json:"plan_status"`
	PlanExpires  *time.Time `json:"plan_expires_at,omitempty"`
	ReferralCode string     `json:"referral_code,omitempty"`

	StreakDay     int `json:"streak_day"`
	LongestStreak int `json:"longest_streak"`
	TotalCheckins int `json:"total_checkins"`

	TasksCompletedToday int  `json:"tasks_completed_today"`
	AdsWatchedToday     int  `json:"ads_watched_today"`
	ScratchesToday      int  `json:"scratches_today"`
	TreasureUnlocked    bool `json:"treasure_unlocked"`

	TotalTasksCompleted int             `json:"total_tasks_completed"`
	TotalReferrals      int             `json:"total_referrals"`
	ReferralEarnings    decimal.Decimal `json:"referral_earnings"`

	FraudFlagCount int `json:"fraud_flag_count"`
}

func NewSummary(acc *Account) *Summary {
	s := &Summary{
		AccountID:           acc.ID,
		Balance:             acc.Balance,
		TotalEarned:         acc.TotalEarned,
		TotalWithdrawn:      acc.TotalWithdrawn,
		PlanID:              acc.SubPlanID,
		PlanStatus:          acc.SubStatus,
		StreakDay:           acc.StreakDay,
		LongestStreak:       acc.LongestStreak,
		TotalCheckins:       acc.TotalCheckins,
		TasksCompletedToday: acc.TasksCompletedToday,
		AdsWatchedToday:     acc.AdsWatchedToday,
		ScratchesToday:      acc.ScratchesToday,
		TreasureUnlocked:    acc.TreasureUnlocked,
		TotalTasksCompleted: acc.TotalTasksCompleted,
		TotalReferrals:      acc.TotalReferrals,
		ReferralEarnings:    acc.ReferralEarnings,
		FraudFlagCount:      acc.FraudCount,
	}
	if acc.SubExpiresAt.Valid {
		t := acc.SubExpiresAt.Time
		s.PlanExpires = &t
	}
	if acc.ReferralCode.Valid {
		s.ReferralCode = acc.ReferralCode.String
	}
	return s
}
