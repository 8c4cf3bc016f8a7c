package catalog

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrAdNotFound   = errors.New("ad not found")
	ErrInactive     = errors.New("catalog item is not active")
)
