package app

import (
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roman-kulish/ionogram/internal/ionogram"
	"github.com/roman-kulish/ionogram/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = `{
  "passport": {"startFreq": 1000, "endFreq": 5000, "stepFreq": 1000, "latency": 1,
               "transmitter": "Inskip", "receiver": "Cyprus",
               "sessionDate": "2024-03-01", "sessionTime": "12:00:00"},
  "bins": [
    {"freq": 2000, "dist": 300, "numDist": 1, "ampl": 5},
    {"freq": 3000, "dist": 450, "numDist": 3, "ampl": 7},
    {"freq": 2000, "dist": 600, "numDist": 5, "ampl": 9}
  ]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodePNG(t *testing.T, path string) (width, height int) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestRun_JSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "ionogram.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(dump), 0o600))

	config := NewConfig()
	config.JSONPath = jsonPath
	config.OutputFile = filepath.Join(dir, "out.png")
	config.Render.Scale = 4
	config.Probe = &Probe{FreqMHz: 3, DelayMs: 1.5}

	require.NoError(t, Run(context.Background(), config, discardLogger()))

	// 5 delay rows (1..5) x 4 frequency columns
	width, height := decodePNG(t, config.OutputFile)
	assert.Equal(t, 16, width)
	assert.Equal(t, 20, height)
}

func TestRun_Store(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ionograms.db")

	ion, err := ionogram.Decode(strings.NewReader(dump))
	require.NoError(t, err)

	store := storage.NewSqliteStore(dbPath)
	id, err := store.StoreIonogram(context.Background(), ion)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	config := NewConfig()
	config.DBPath = dbPath
	config.IonogramID = id
	config.OutputFile = filepath.Join(dir, "out.jpeg")
	config.Format = ImageJPEG
	config.Builder = "decibel"

	require.NoError(t, Run(context.Background(), config, discardLogger()))

	info, err := os.Stat(config.OutputFile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()

	config := NewConfig()
	config.DBPath = filepath.Join(dir, "missing.db")
	config.IonogramID = 1
	config.OutputFile = filepath.Join(dir, "out.png")
	assert.Error(t, Run(context.Background(), config, discardLogger()))

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`{
  "passport": {"startFreq": 1000, "endFreq": 5000, "stepFreq": 1000, "latency": 1},
  "bins": [{"freq": 9000, "dist": 300, "numDist": 1, "ampl": 5}]
}`), 0o600))

	config = NewConfig()
	config.JSONPath = malformed
	config.OutputFile = filepath.Join(dir, "out.png")
	assert.Error(t, Run(context.Background(), config, discardLogger()))

	_, err := os.Stat(config.OutputFile)
	assert.ErrorIs(t, err, os.ErrNotExist, "no image is written for a malformed ionogram")
}
