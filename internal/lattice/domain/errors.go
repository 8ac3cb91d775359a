package domain

import "errors"

var (
	ErrInvalidParameter  = errors.New("invalid model parameter")
	ErrInvalidHorizon    = errors.New("invalid horizon")
	ErrMalformedProcess  = errors.New("malformed decision process")
	ErrValuationNotFound = errors.New("valuation not found")
)
