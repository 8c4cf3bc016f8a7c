package referral

import "errors"

var (
	ErrCodeNotFound   = errors.New("referral code not found")
	ErrSelfReferral   = errors.New("cannot refer yourself")
	ErrNotFound       = errors.New("referral not found")
	ErrAlreadySettled = errors.New("referral already settled")
)
