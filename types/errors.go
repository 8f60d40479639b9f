package types

import "errors"

// Terminal failure kinds. Every error returned by the processor wraps exactly
// one of them, so callers can tell the two apart with errors.Is.
var (
	ErrInputUnreadable = errors.New("input unreadable")
	ErrInvalidConfig   = errors.New("invalid configuration")
)
