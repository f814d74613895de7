package script

import "errors"

// ErrUnsupportedFormat and related errors describe script loading failures.
var (
	ErrUnsupportedFormat = errors.New("unsupported script format")
	ErrEmptyScript       = errors.New("script has no steps")
	ErrUnknownOp         = errors.New("unknown step op")
	ErrInvalidStep       = errors.New("invalid step")
	ErrExpectation       = errors.New("expectation failed")
)
