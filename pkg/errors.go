package music

import "fmt"

// ErrInputShape represents an event table that cannot be calibrated:
// a missing column, no rows or columns of different length.
type ErrInputShape struct {
	Column string
	Reason string
}

func (e *ErrInputShape) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("invalid event table: %s", e.Reason)
	}
	return fmt.Sprintf("invalid event table, column %q: %s", e.Column, e.Reason)
}

// ErrFitConvergence represents a gaussian fit that did not converge.
// Channel and Summary are filled by the normalizer.
type ErrFitConvergence struct {
	Channel string
	Reason  string
	Summary HistogramSummary
}

func (e *ErrFitConvergence) Error() string {
	if e.Channel == "" {
		return fmt.Sprintf("gaussian fit failed: %s", e.Reason)
	}
	return fmt.Sprintf("gaussian fit failed for channel %q: %s (%s)", e.Channel, e.Reason, e.Summary)
}

// ErrOffsetNotFound represents a short channel without entries in the
// offset analysis range.
type ErrOffsetNotFound struct {
	Channel string
	Low     float64
	High    float64
}

func (e *ErrOffsetNotFound) Error() string {
	return fmt.Sprintf("no entries for channel %q in offset range [%g, %g)", e.Channel, e.Low, e.High)
}

// ErrConfiguration represents an invalid configuration value.
type ErrConfiguration struct {
	Field  string
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration %q: %s", e.Field, e.Reason)
}
