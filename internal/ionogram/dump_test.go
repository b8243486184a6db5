package ionogram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `{
  "passport": {
    "startFreq": 1000, "endFreq": 5000, "stepFreq": 1000, "latency": 1.5,
    "transmitter": "Inskip", "receiver": "Cyprus",
    "sessionDate": "2024-03-01", "sessionTime": "12:00:00"
  },
  "bins": [
    {"freq": 2000, "dist": 300, "numDist": 1, "ampl": 5},
    {"freq": 2000, "dist": 600, "numDist": 2, "ampl": 9}
  ]
}`

func TestDecode(t *testing.T) {
	ion, err := Decode(strings.NewReader(sampleDump))
	require.NoError(t, err)

	assert.Equal(t, Passport{
		StartFreq:   1000,
		EndFreq:     5000,
		StepFreq:    1000,
		Latency:     1.5,
		Transmitter: "Inskip",
		Receiver:    "Cyprus",
		SessionDate: "2024-03-01",
		SessionTime: "12:00:00",
	}, ion.Passport)
	assert.Equal(t, []MeasurementBin{
		{Freq: 2000, Dist: 300, NumDist: 1, Ampl: 5},
		{Freq: 2000, Dist: 600, NumDist: 2, Ampl: 9},
	}, ion.Bins)
}

func TestDecode_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not an object", "[]"},
		{"unknown field", `{"passport": {}, "bins": [], "extra": 1}`},
		{"wrong type", `{"passport": {"startFreq": "1000"}}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.in))
			assert.Error(t, err)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ionogram.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0o600))

	ion, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, ion.Bins, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
