package grid

import (
	"math"

	"github.com/roman-kulish/ionogram/internal/ionogram"
)

// DecibelBuilder lays bins out like SimpleBuilder but stores 20*log10(ampl),
// floored at 0 dB, which lifts weak echoes for display. Empty cells and
// amplitudes at or below 1 stay 0.
type DecibelBuilder struct {
	builder
}

// NewDecibelBuilder creates an unbuilt DecibelBuilder for the ionogram.
func NewDecibelBuilder(ion *ionogram.Ionogram, opts ...Option) *DecibelBuilder {
	return &DecibelBuilder{builder: newBuilder(ion, opts...)}
}

func (b *DecibelBuilder) Process() (ArrayBuilder, error) {
	return b, b.populate(decibels)
}

func (b *DecibelBuilder) PointPosition(freqMHz, delayMs float64) (Position, error) {
	return b.position(freqMHz, delayMs)
}

func decibels(v float64) float64 {
	if v <= 1 {
		return 0
	}
	return 20 * math.Log10(v)
}
