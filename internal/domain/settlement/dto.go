package settlement

// ActivityRequest reports one completed activity for settlement. TaskID and
// AdID are required for their respective kinds and ignored otherwise.
type ActivityRequest struct {
	Kind   string `json:"kind" validate:"required,activity_kind"`
	TaskID string `json:"task_id,omitempty" validate:"omitempty,max=64"`
	AdID   string `json:"ad_id,omitempty" validate:"omitempty,max=64"`
}

func (r ActivityRequest) itemID() string {
	switch Kind(r.Kind) {
	case KindTask:
		return r.TaskID
	case KindAd:
		return r.AdID
	default:
		return ""
	}
}
