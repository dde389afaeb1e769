package domain

import "errors"

var (
	// ErrInvalidLevel is returned for a level other than district or state.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrInvalidAggFunc is returned for an aggregation other than mean, sum or median.
	ErrInvalidAggFunc = errors.New("invalid aggregation")

	// ErrUnknownColumn is returned when a configured column is missing from the table header.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoValueColumns is returned when no value columns are configured.
	ErrNoValueColumns = errors.New("no value columns")
)
