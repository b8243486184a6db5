package ionogram

import "math"

// DelayDivisor converts a bin distance into a delay in milliseconds.
const DelayDivisor = 300.0

// Passport describes the frequency sweep of a single sounding session.
// Frequencies are in kHz, latency is the minimum delay offset in ms.
type Passport struct {
	StartFreq   int     `json:"startFreq"`
	EndFreq     int     `json:"endFreq"`
	StepFreq    int     `json:"stepFreq"`
	Latency     float64 `json:"latency"`
	Transmitter string  `json:"transmitter,omitempty"` // Transmitter station id
	Receiver    string  `json:"receiver,omitempty"`    // Receiver station id
	SessionDate string  `json:"sessionDate,omitempty"` // Session date as written by the sounder
	SessionTime string  `json:"sessionTime,omitempty"` // Session time as written by the sounder
}

// MeasurementBin is one sparse amplitude sample of the ionogram.
type MeasurementBin struct {
	Freq    int     `json:"freq"`    // Frequency in kHz
	Dist    float64 `json:"dist"`    // Delay-proportional distance
	NumDist int     `json:"numDist"` // Quantized delay index, the grid row key
	Ampl    float64 `json:"ampl"`    // Signal amplitude
}

// Ionogram is a parsed sounding: the passport and its measurement bins
// in the order they were read.
type Ionogram struct {
	Passport Passport         `json:"passport"`
	Bins     []MeasurementBin `json:"bins"`
}

// NumDistRange returns the smallest and the largest delay index.
// ok is false when the ionogram has no bins.
func (i *Ionogram) NumDistRange() (minNumDist, maxNumDist int, ok bool) {
	if len(i.Bins) == 0 {
		return 0, 0, false
	}

	minNumDist, maxNumDist = i.Bins[0].NumDist, i.Bins[0].NumDist
	for _, b := range i.Bins[1:] {
		minNumDist = min(minNumDist, b.NumDist)
		maxNumDist = max(maxNumDist, b.NumDist)
	}
	return minNumDist, maxNumDist, true
}

// MaxDist returns the largest bin distance, or 0 for an empty ionogram.
func (i *Ionogram) MaxDist() float64 {
	if len(i.Bins) == 0 {
		return 0
	}

	maxDist := math.Inf(-1)
	for _, b := range i.Bins {
		maxDist = max(maxDist, b.Dist)
	}
	return maxDist
}

// MinNumDistDist returns the distance of the first bin holding the smallest
// delay index. It is the lower edge of the display extent.
func (i *Ionogram) MinNumDistDist() float64 {
	if len(i.Bins) == 0 {
		return 0
	}

	lowest := i.Bins[0]
	for _, b := range i.Bins[1:] {
		if b.NumDist < lowest.NumDist {
			lowest = b
		}
	}
	return lowest.Dist
}

// DistToDelay converts a bin distance to a delay in milliseconds.
func DistToDelay(dist float64) float64 {
	return dist / DelayDivisor
}
