package models

import "errors"

// Sentinel errors returned by the analytics services. Callers match them
// with errors.Is; services wrap them with the offending model, date or length.
var (
	ErrNoPricingFound    = errors.New("no pricing found")
	ErrEmptyInput        = errors.New("empty input")
	ErrInvalidSessionID  = errors.New("invalid session id")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
