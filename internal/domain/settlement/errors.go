package settlement

import "errors"

var (
	ErrUnknownKind   = errors.New("unknown activity kind")
	ErrMissingItemID = errors.New("missing catalog item id")
)
