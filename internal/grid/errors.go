package grid

import (
	"errors"
	"fmt"

	"github.com/roman-kulish/ionogram/internal/ionogram"
)

var (
	// ErrMalformedInput is returned by Process when a bin does not fit the axes
	// derived from the passport and the bin extremes, or when there are no bins.
	ErrMalformedInput = errors.New("malformed ionogram")

	// ErrNotBuilt is returned by queries made before a successful Process.
	ErrNotBuilt = errors.New("grid is not built")

	// ErrInvalidRange is returned when an axis range is degenerate and a
	// normalization would divide by zero.
	ErrInvalidRange = errors.New("invalid range")
)

// Axis names used in BinError.
const (
	AxisFrequency = "freq"
	AxisNumDist   = "num_dist"
)

// BinError reports the bin that could not be placed on the grid.
type BinError struct {
	Index int                     // Position of the bin in the input sequence
	Bin   ionogram.MeasurementBin // Offending bin
	Axis  string                  // Axis the lookup failed on
}

func (e *BinError) Error() string {
	value := e.Bin.Freq
	if e.Axis == AxisNumDist {
		value = e.Bin.NumDist
	}
	return fmt.Sprintf("%s: bin #%d: %s %d is outside of the axis", ErrMalformedInput, e.Index, e.Axis, value)
}

func (e *BinError) Unwrap() error {
	return ErrMalformedInput
}

func invalidRange(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRange, fmt.Sprintf(format, args...))
}
