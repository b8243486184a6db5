package grid

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roman-kulish/ionogram/internal/ionogram"
	"gonum.org/v1/gonum/mat"
)

const (
	StrategySimple  Strategy = "simple"
	StrategyDecibel Strategy = "decibel"
)

// Strategy names an ArrayBuilder implementation.
type Strategy string

// ArrayBuilder converts the sparse bins of an ionogram into a dense amplitude
// grid and maps points between physical units and grid coordinates.
//
// A builder starts unbuilt. Process is the only way to build it; calling it
// again rebuilds the grid from scratch. All queries return ErrNotBuilt until
// Process has succeeded. A builder is not safe for concurrent use.
type ArrayBuilder interface {
	// Process builds the grid and returns the builder itself for chaining.
	Process() (ArrayBuilder, error)

	// Grid returns the grid built by the last successful Process.
	Grid() (*AmplitudeGrid, error)

	// PointPosition maps a frequency in MHz and a delay in ms to normalized
	// and grid coordinates. Results are not clamped to the grid.
	PointPosition(freqMHz, delayMs float64) (Position, error)

	// PhysicalValues maps normalized coordinates back to physical values.
	PhysicalValues(tFreq, tDelay float64) (PhysicalPoint, error)

	// Extent returns the physical bounds used to display the grid.
	Extent() (Extent, error)
}

// Position is the result of the forward coordinate mapping.
type Position struct {
	TFreq      float64 // Normalized frequency, 0..1 within the passport range
	FreqCoord  int     // Column index
	TDelay     float64 // Normalized delay
	DelayCoord int     // Row index
}

// PhysicalPoint is the result of the inverse coordinate mapping.
type PhysicalPoint struct {
	Freq  float64 // Frequency in kHz
	Delay float64 // Delay in ms
}

// Extent is the display extent of a grid: the passport frequency range and
// the distance range covered by the bins.
type Extent struct {
	FreqMin, FreqMax float64 // kHz
	DistMin, DistMax float64 // bin distance units
}

// DelayMin returns the lower edge of the extent in ms.
func (e Extent) DelayMin() float64 {
	return ionogram.DistToDelay(e.DistMin)
}

// DelayMax returns the upper edge of the extent in ms.
func (e Extent) DelayMax() float64 {
	return ionogram.DistToDelay(e.DistMax)
}

// Option configures a builder.
type Option func(*builder)

// WithLogger sets the logger used to report grid construction.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		b.logger = logger
	}
}

// New creates a builder for the named strategy.
func New(strategy Strategy, ion *ionogram.Ionogram, opts ...Option) (ArrayBuilder, error) {
	switch strategy {
	case StrategySimple, "":
		return NewSimpleBuilder(ion, opts...), nil
	case StrategyDecibel:
		return NewDecibelBuilder(ion, opts...), nil
	default:
		return nil, fmt.Errorf("unknown grid strategy '%s'", strategy)
	}
}

// maxCells caps the size of the dense grid a single ionogram may allocate.
const maxCells = 1 << 26

// builder holds the state and the behaviour shared by every strategy.
type builder struct {
	ion    *ionogram.Ionogram
	grid   *AmplitudeGrid
	axes   mapping
	logger *slog.Logger
}

// mapping is the coordinate state captured by the last successful Process.
// Queries read only this, never the live ionogram.
type mapping struct {
	passport       ionogram.Passport
	maxDist        float64
	minNumDistDist float64
}

func newBuilder(ion *ionogram.Ionogram, opts ...Option) builder {
	b := builder{
		ion:    ion,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// populate builds the axes, places every bin and zeroes row 0. The builder
// is left unbuilt when it fails.
func (b *builder) populate(amplitude func(float64) float64) error {
	b.grid = nil
	b.axes = mapping{}

	if b.ion == nil {
		return fmt.Errorf("%w: no ionogram", ErrMalformedInput)
	}

	p := b.ion.Passport
	if p.StepFreq <= 0 {
		return invalidRange("frequency step %d must be positive", p.StepFreq)
	}
	if p.EndFreq <= p.StartFreq {
		return invalidRange("end frequency %d must be above start frequency %d", p.EndFreq, p.StartFreq)
	}

	minNumDist, maxNumDist, ok := b.ion.NumDistRange()
	if !ok {
		return fmt.Errorf("%w: no bins", ErrMalformedInput)
	}

	rows, ok := span(minNumDist, maxNumDist)
	if !ok {
		return invalidRange("num_dist span %d..%d is too wide", minNumDist, maxNumDist)
	}

	// the first column is start+step, the start frequency itself is not a measurement
	freqSpan, ok := span(p.StartFreq, p.EndFreq)
	if !ok {
		return invalidRange("frequency span %d..%d kHz is too wide", p.StartFreq, p.EndFreq)
	}
	cols := (freqSpan - 1) / p.StepFreq
	if cols == 0 {
		return invalidRange("no frequency steps between %d and %d kHz with step %d", p.StartFreq, p.EndFreq, p.StepFreq)
	}
	if rows > maxCells/cols {
		return invalidRange("grid of %d x %d cells is too large", rows, cols)
	}

	h := make([]int, rows)
	for i := range h {
		h[i] = minNumDist + i
	}
	f := make([]int, cols)
	for i := range f {
		f[i] = p.StartFreq + (i+1)*p.StepFreq
	}

	data := mat.NewDense(len(h), len(f), nil)
	for i, bin := range b.ion.Bins {
		row := bin.NumDist - minNumDist
		if row < 0 || row >= len(h) {
			return &BinError{Index: i, Bin: bin, Axis: AxisNumDist}
		}

		col, ok := frequencyIndex(bin.Freq, p)
		if !ok || col >= len(f) {
			return &BinError{Index: i, Bin: bin, Axis: AxisFrequency}
		}

		data.Set(row, col, amplitude(bin.Ampl))
	}

	// row 0 carries service data
	data.SetRow(0, make([]float64, len(f)))

	b.grid = &AmplitudeGrid{data: data, h: h, f: f}
	b.axes = mapping{
		passport:       p,
		maxDist:        b.ion.MaxDist(),
		minNumDistDist: b.ion.MinNumDistDist(),
	}

	b.logger.Debug("grid built",
		slog.Int("bins", len(b.ion.Bins)),
		slog.Int("rows", len(h)),
		slog.Int("cols", len(f)),
		slog.Int("minNumDist", minNumDist),
		slog.Int("maxNumDist", maxNumDist))

	return nil
}

// frequencyIndex returns the column of freq on the axis start+step..end.
func frequencyIndex(freq int, p ionogram.Passport) (int, bool) {
	offset := freq - p.StartFreq
	if offset < p.StepFreq || offset%p.StepFreq != 0 || freq > p.EndFreq {
		return 0, false
	}
	return offset/p.StepFreq - 1, true
}

// span returns the number of integers in lo..hi, or false when it does not fit an int.
func span(lo, hi int) (int, bool) {
	d := hi - lo
	// hi-lo wraps negative when it overflows
	if d < 0 || d == math.MaxInt {
		return 0, false
	}
	return d + 1, true
}

func (b *builder) Grid() (*AmplitudeGrid, error) {
	if b.grid == nil {
		return nil, ErrNotBuilt
	}
	return b.grid, nil
}

// PhysicalValues maps normalized coordinates to a frequency in kHz and a
// delay in ms. Values outside 0..1 extrapolate linearly.
//
// The delay range upper bound here is max(dist)*2/300, while PointPosition
// uses max(dist)/300, so the two mappings are not inverse to each other
// along the delay axis.
func (b *builder) PhysicalValues(tFreq, tDelay float64) (PhysicalPoint, error) {
	if b.grid == nil {
		return PhysicalPoint{}, ErrNotBuilt
	}

	p := b.axes.passport
	maxDelay := ionogram.DistToDelay(b.axes.maxDist * 2)

	return PhysicalPoint{
		Freq:  float64(p.StartFreq) + float64(p.EndFreq-p.StartFreq)*tFreq,
		Delay: p.Latency + (maxDelay-p.Latency)*tDelay,
	}, nil
}

func (b *builder) Extent() (Extent, error) {
	if b.grid == nil {
		return Extent{}, ErrNotBuilt
	}

	p := b.axes.passport
	return Extent{
		FreqMin: float64(p.StartFreq),
		FreqMax: float64(p.EndFreq),
		DistMin: b.axes.minNumDistDist,
		DistMax: b.axes.maxDist,
	}, nil
}

// position is the forward mapping shared by the strategies that keep one
// grid cell per frequency step and delay index.
func (b *builder) position(freqMHz, delayMs float64) (Position, error) {
	if b.grid == nil {
		return Position{}, ErrNotBuilt
	}

	p := b.axes.passport
	minDelay := p.Latency
	maxDelay := ionogram.DistToDelay(b.axes.maxDist)
	if maxDelay == minDelay {
		return Position{}, invalidRange("empty delay range at %0.3f ms", minDelay)
	}

	height, width := b.grid.Dims()

	tFreq := (freqMHz*1000 - float64(p.StartFreq)) / float64(p.EndFreq-p.StartFreq)
	tDelay := (delayMs - minDelay) / (maxDelay - minDelay)

	return Position{
		TFreq:      tFreq,
		FreqCoord:  int(math.RoundToEven(float64(width) * tFreq)),
		TDelay:     tDelay,
		DelayCoord: int(math.RoundToEven(float64(height) * tDelay)),
	}, nil
}
