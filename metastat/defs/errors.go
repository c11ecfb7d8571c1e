package defs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSequenceViolation      = errors.New("sequence violation")
	ErrInterpolationExhausted = errors.New("interpolation exhausted")
	ErrMissingCounterpart     = errors.New("missing counterpart")
	ErrWidthTooSmall          = errors.New("bucket width too small")
	ErrDuplicateWidth         = errors.New("duplicate bucket width")
)

// SequenceError reports a sample older than its predecessor.
type SequenceError struct {
	Index    int
	Previous time.Time
	Current  time.Time
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("out of sequence at sample %d: %s before %s",
		e.Index, e.Current.Format(time.RFC3339), e.Previous.Format(time.RFC3339))
}

func (e *SequenceError) Unwrap() error { return ErrSequenceViolation }

// ExhaustedError reports invalid buckets left after the pass budget.
type ExhaustedError struct {
	Series    string
	Passes    int
	Remaining int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d invalid buckets after %d interpolation passes", e.Series, e.Remaining, e.Passes)
}

func (e *ExhaustedError) Unwrap() error { return ErrInterpolationExhausted }

// CounterpartError describes a bucket without a match in another series. It
// is only ever logged.
type CounterpartError struct {
	Series string
	Bucket string
}

func (e *CounterpartError) Error() string {
	return fmt.Sprintf("%s has no %s bucket", e.Bucket, e.Series)
}

func (e *CounterpartError) Unwrap() error { return ErrMissingCounterpart }
