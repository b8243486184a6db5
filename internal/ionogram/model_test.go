package ionogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIonogram_Extremes(t *testing.T) {
	ion := &Ionogram{
		Bins: []MeasurementBin{
			{Freq: 2000, Dist: 450, NumDist: 3, Ampl: 1},
			{Freq: 3000, Dist: 300, NumDist: 1, Ampl: 2},
			{Freq: 4000, Dist: 900, NumDist: 7, Ampl: 3},
			{Freq: 5000, Dist: 330, NumDist: 1, Ampl: 4},
		},
	}

	minND, maxND, ok := ion.NumDistRange()
	assert.True(t, ok)
	assert.Equal(t, 1, minND)
	assert.Equal(t, 7, maxND)
	assert.Equal(t, 900.0, ion.MaxDist())

	// first bin with the lowest index wins
	assert.Equal(t, 300.0, ion.MinNumDistDist())
	assert.InDelta(t, 3.0, DistToDelay(ion.MaxDist()), 1e-12)
}

func TestIonogram_Empty(t *testing.T) {
	ion := &Ionogram{}

	_, _, ok := ion.NumDistRange()
	assert.False(t, ok)
	assert.Zero(t, ion.MaxDist())
	assert.Zero(t, ion.MinNumDistDist())
}
