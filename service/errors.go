package service

import "errors"

// Sentinel errors mapped to HTTP status codes by the handlers
var (
	ErrValidation      = errors.New("validation failed")
	ErrStorage         = errors.New("storage error")
	ErrExternalService = errors.New("external service error")
	ErrNotFound        = errors.New("not found")
)
