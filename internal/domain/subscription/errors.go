package subscription

import "errors"

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanNotPayable   = errors.New("plan cannot be purchased")
	ErrAlreadyProcessed = errors.New("payment already processed")
)
