package pattern

import "errors"

var (
	// ErrEmptyPolicy is returned when a matcher is configured without comparators.
	ErrEmptyPolicy = errors.New("policy requires at least one comparator")

	// ErrNegativeTolerance is returned for a tolerance comparator below zero.
	ErrNegativeTolerance = errors.New("tolerance cannot be negative")
)
