package domain

import "errors"

var (
	// ErrUnknownTitle is returned when a title is not in the catalog.
	ErrUnknownTitle = errors.New("unknown title")

	// ErrEmptyKeyword is returned for a blank keyword query.
	ErrEmptyKeyword = errors.New("empty keyword")

	// ErrInvalidReview is wrapped by review validation failures.
	ErrInvalidReview = errors.New("invalid review")
)
