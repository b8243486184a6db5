package grid

import (
	"testing"

	"github.com/roman-kulish/ionogram/internal/ionogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// five delay rows, four frequency columns, max dist 600 (2 ms), latency 1 ms
func coordinateBuilder(t *testing.T) ArrayBuilder {
	t.Helper()

	ion := &ionogram.Ionogram{
		Passport: passport(1000, 5000, 1000),
		Bins: []ionogram.MeasurementBin{
			{Freq: 2000, Dist: 300, NumDist: 1, Ampl: 1},
			{Freq: 3000, Dist: 450, NumDist: 3, Ampl: 2},
			{Freq: 4000, Dist: 600, NumDist: 5, Ampl: 3},
		},
	}

	b, err := NewSimpleBuilder(ion).Process()
	require.NoError(t, err)
	return b
}

func TestPointPosition(t *testing.T) {
	b := coordinateBuilder(t)

	testCases := []struct {
		name     string
		freqMHz  float64
		delayMs  float64
		expected Position
	}{
		{"grid centre rounds half to even", 3.0, 1.5, Position{TFreq: 0.5, FreqCoord: 2, TDelay: 0.5, DelayCoord: 2}},
		{"lower corner", 1.0, 1.0, Position{TFreq: 0, FreqCoord: 0, TDelay: 0, DelayCoord: 0}},
		{"upper corner", 5.0, 2.0, Position{TFreq: 1, FreqCoord: 4, TDelay: 1, DelayCoord: 5}},
		{"quarter", 2.0, 1.25, Position{TFreq: 0.25, FreqCoord: 1, TDelay: 0.25, DelayCoord: 1}},
		{"above range is not clamped", 10.0, 3.0, Position{TFreq: 2.25, FreqCoord: 9, TDelay: 2, DelayCoord: 10}},
		{"below range is not clamped", 0.0, 0.0, Position{TFreq: -0.25, FreqCoord: -1, TDelay: -1, DelayCoord: -5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := b.PointPosition(tc.freqMHz, tc.delayMs)
			require.NoError(t, err)

			assert.InDelta(t, tc.expected.TFreq, pos.TFreq, 1e-12)
			assert.InDelta(t, tc.expected.TDelay, pos.TDelay, 1e-12)
			assert.Equal(t, tc.expected.FreqCoord, pos.FreqCoord)
			assert.Equal(t, tc.expected.DelayCoord, pos.DelayCoord)
		})
	}
}

func TestPhysicalValues(t *testing.T) {
	b := coordinateBuilder(t)

	testCases := []struct {
		name           string
		tFreq, tDelay  float64
		freqKHz, delay float64
	}{
		// the inverse mapping spans latency..max(dist)*2/300, i.e. 1..4 ms
		{"origin", 0, 0, 1000, 1},
		{"centre", 0.5, 0.5, 3000, 2.5},
		{"far corner", 1, 1, 5000, 4},
		{"overshoot extrapolates", 1.1, -0.1, 5400, 0.7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pt, err := b.PhysicalValues(tc.tFreq, tc.tDelay)
			require.NoError(t, err)
			assert.InDelta(t, tc.freqKHz, pt.Freq, 1e-9)
			assert.InDelta(t, tc.delay, pt.Delay, 1e-9)
		})
	}
}

func TestCoordinates_RoundTrip(t *testing.T) {
	b := coordinateBuilder(t)

	testCases := []struct {
		freqMHz, delayMs float64
	}{
		{3.0, 1.5},
		{2.0, 1.25},
		{4.5, 1.8},
		{1.2, 1.1},
	}

	for _, tc := range testCases {
		pos, err := b.PointPosition(tc.freqMHz, tc.delayMs)
		require.NoError(t, err)

		pt, err := b.PhysicalValues(pos.TFreq, pos.TDelay)
		require.NoError(t, err)

		// frequency comes back exactly, in kHz
		assert.InDelta(t, tc.freqMHz*1000, pt.Freq, 1e-9)

		// the delay comes back on a range twice as long above the latency:
		// d' = latency + 3*(d-latency)/(2-latency) with latency 1 and max delay 2
		assert.InDelta(t, 1+3*(tc.delayMs-1), pt.Delay, 1e-9)
		assert.NotEqual(t, tc.delayMs, pt.Delay)
	}
}

func TestPointPosition_DegenerateDelayRange(t *testing.T) {
	ion := &ionogram.Ionogram{
		Passport: passport(1000, 5000, 1000),
		Bins: []ionogram.MeasurementBin{
			{Freq: 2000, Dist: 300, NumDist: 1, Ampl: 1}, // 1 ms, equal to the latency
		},
	}

	b, err := NewSimpleBuilder(ion).Process()
	require.NoError(t, err)

	_, err = b.PointPosition(2, 1)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestExtent(t *testing.T) {
	b := coordinateBuilder(t)

	e, err := b.Extent()
	require.NoError(t, err)

	assert.Equal(t, Extent{FreqMin: 1000, FreqMax: 5000, DistMin: 300, DistMax: 600}, e)
	assert.InDelta(t, 1.0, e.DelayMin(), 1e-12)
	assert.InDelta(t, 2.0, e.DelayMax(), 1e-12)
}
