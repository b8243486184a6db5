package grid

import (
	"slices"

	"gonum.org/v1/gonum/mat"
)

// AmplitudeGrid is the dense amplitude array built from sparse bins.
// Row 0 holds the lowest delay index, column 0 the lowest non-zero
// frequency step. The grid is never modified after it is built.
type AmplitudeGrid struct {
	data *mat.Dense
	h    []int // num_dist value of every row
	f    []int // frequency in kHz of every column
}

// Dims returns the number of rows (delay indices) and columns (frequency steps).
func (g *AmplitudeGrid) Dims() (rows, cols int) {
	return g.data.Dims()
}

// At returns the amplitude of a single cell. It panics if the cell is out of range.
func (g *AmplitudeGrid) At(row, col int) float64 {
	return g.data.At(row, col)
}

// Row returns a copy of one grid row.
func (g *AmplitudeGrid) Row(row int) []float64 {
	return mat.Row(nil, row, g.data)
}

// Rows returns a copy of the whole grid as a slice of rows.
func (g *AmplitudeGrid) Rows() [][]float64 {
	rows, _ := g.data.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = g.Row(i)
	}
	return out
}

// Max returns the largest amplitude in the grid.
func (g *AmplitudeGrid) Max() float64 {
	return mat.Max(g.data)
}

// Matrix returns a copy of the grid for numeric post-processing.
func (g *AmplitudeGrid) Matrix() *mat.Dense {
	return mat.DenseCopyOf(g.data)
}

// DelayAxis returns the num_dist value of every row.
func (g *AmplitudeGrid) DelayAxis() []int {
	return slices.Clone(g.h)
}

// FrequencyAxis returns the frequency, in kHz, of every column.
func (g *AmplitudeGrid) FrequencyAxis() []int {
	return slices.Clone(g.f)
}
