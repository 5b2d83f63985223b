package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound    = errors.New("record not found")
	ErrNoQuotes    = errors.New("no quotes available for recommended side")
	ErrStoreClosed = errors.New("vector store is closed")
)

// DimensionError reports a vector whose length disagrees with the store's
// fixed dimension. This is a precondition violation, distinct from an empty
// query result.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: store expects %d, got %d", e.Want, e.Got)
}

// InsufficientDataError is the typed "not enough similar games" outcome. It
// is a normal result of estimation, surfaced as an error value so callers
// can distinguish it with errors.As without a second return shape.
type InsufficientDataError struct {
	SampleSize int
	Required   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient historical data: %d similar games, need %d", e.SampleSize, e.Required)
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}
