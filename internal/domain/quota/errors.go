package quota

import "errors"

var ErrQuotaExceeded = errors.New("daily quota exceeded")
