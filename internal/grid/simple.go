package grid

import "github.com/roman-kulish/ionogram/internal/ionogram"

// SimpleBuilder places every bin amplitude as is into the cell addressed by
// its delay index and frequency. When two bins address the same cell the one
// read last wins.
type SimpleBuilder struct {
	builder
}

// NewSimpleBuilder creates an unbuilt SimpleBuilder for the ionogram.
func NewSimpleBuilder(ion *ionogram.Ionogram, opts ...Option) *SimpleBuilder {
	return &SimpleBuilder{builder: newBuilder(ion, opts...)}
}

func (b *SimpleBuilder) Process() (ArrayBuilder, error) {
	return b, b.populate(identity)
}

func (b *SimpleBuilder) PointPosition(freqMHz, delayMs float64) (Position, error) {
	return b.position(freqMHz, delayMs)
}

func identity(v float64) float64 {
	return v
}
