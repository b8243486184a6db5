package render

import (
	"image/color"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/roman-kulish/ionogram/internal/grid"
	"github.com/roman-kulish/ionogram/internal/ionogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func samplePlot(t *testing.T) *Plot {
	t.Helper()

	ion := &ionogram.Ionogram{
		Passport: ionogram.Passport{
			StartFreq:   1000,
			EndFreq:     5000,
			StepFreq:    1000,
			Latency:     1,
			Transmitter: "Inskip",
			Receiver:    "Cyprus",
			SessionDate: "2024-03-01",
			SessionTime: "12:00:00",
		},
		Bins: []ionogram.MeasurementBin{
			{Freq: 2000, Dist: 300, NumDist: 1, Ampl: 5},
			{Freq: 3000, Dist: 300, NumDist: 1, Ampl: 7},
			{Freq: 2000, Dist: 600, NumDist: 2, Ampl: 9},
		},
	}

	b, err := grid.NewSimpleBuilder(ion).Process()
	require.NoError(t, err)

	p, err := NewPlot(b, ion.Passport)
	require.NoError(t, err)
	return p
}

func TestRenderer_Render(t *testing.T) {
	p := samplePlot(t)

	config := DefaultRenderConfig()
	config.Scale = 10
	config.Alpha = 0

	r, err := NewRenderer(config)
	require.NoError(t, err)

	img, err := r.Render(p)
	require.NoError(t, err)

	// 2 rows x 4 columns, 10px per cell
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	peak := color.RGBAModel.Convert(NewColorMapper(JetTheme, 0, 9).Color(9))
	assert.Equal(t, peak, img.RGBAAt(5, 5), "row 1 is drawn at the top")
	assert.Equal(t, white, img.RGBAAt(15, 5), "zero amplitude is white")
	assert.Equal(t, white, img.RGBAAt(5, 15), "row 0 is drawn at the bottom and is empty")
	assert.Equal(t, white, img.RGBAAt(35, 15))
}

func TestRenderer_RenderGridlines(t *testing.T) {
	p := samplePlot(t)

	config := DefaultRenderConfig()
	config.Scale = 10
	config.Colorbar = false

	r, err := NewRenderer(config)
	require.NoError(t, err)

	img, err := r.Render(p)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(0, 0), "edge gridlines are drawn opaque")
}

func TestRenderer_Errors(t *testing.T) {
	r, err := NewRenderer(DefaultRenderConfig())
	require.NoError(t, err)

	_, err = r.Render(nil)
	assert.Error(t, err)

	_, err = r.Render(&Plot{})
	assert.Error(t, err)
}

func TestRenderConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*RenderConfig)
		valid  bool
	}{
		{"defaults", func(*RenderConfig) {}, true},
		{"transparent", func(c *RenderConfig) { c.Alpha = 0 }, true},
		{"alpha above one", func(c *RenderConfig) { c.Alpha = 1.5 }, false},
		{"negative alpha", func(c *RenderConfig) { c.Alpha = -0.1 }, false},
		{"zero dpi", func(c *RenderConfig) { c.DPI = 0 }, false},
		{"zero scale", func(c *RenderConfig) { c.Scale = 0 }, false},
		{"negative gridlines", func(c *RenderConfig) { c.Grid.Vertical = -1 }, false},
		{"unknown theme", func(c *RenderConfig) { c.Theme = "rainbow" }, false},
		{"thermal theme", func(c *RenderConfig) { c.Theme = ThermalTheme }, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultRenderConfig()
			tc.modify(&config)

			_, err := NewRenderer(config)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewPlot_NotBuilt(t *testing.T) {
	b := grid.NewSimpleBuilder(&ionogram.Ionogram{})

	_, err := NewPlot(b, ionogram.Passport{})
	assert.ErrorIs(t, err, grid.ErrNotBuilt)
}

func TestColorMapper(t *testing.T) {
	cm := NewColorMapper(JetTheme, 0, 9)

	assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, cm.Color(0), "lowest index is white")
	assert.Equal(t, cm.Color(0), cm.Color(-3), "values below the bounds are clamped")
	assert.Equal(t, cm.Color(9), cm.Color(100), "values above the bounds are clamped")

	top, ok := cm.Color(9).(colorful.Color)
	require.True(t, ok)
	assert.InDelta(t, 0.5, top.R, 1e-9)
	assert.InDelta(t, 0, top.G, 1e-9)
	assert.InDelta(t, 0, top.B, 1e-9)

	flat := NewColorMapper(JetTheme, 0, 0)
	assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, flat.Color(0))

	assert.Equal(t, JetTheme, NewColorMapper("unknown", 0, 1).Theme())
	assert.NotEqual(t, colorful.Color{R: 1, G: 1, B: 1}, NewColorMapper(ClassicTheme, 0, 1).Color(0))
}

func TestJet(t *testing.T) {
	testCases := []struct {
		v       float64
		r, g, b float64
	}{
		{0, 0, 0, 0.5},
		{0.5, 0.15 / 0.31, 1, 1 - 0.16/0.31},
		{1, 0.5, 0, 0},
	}
	for _, tc := range testCases {
		c := jet(tc.v)
		assert.InDelta(t, tc.r, c.R, 1e-9, "red at %v", tc.v)
		assert.InDelta(t, tc.g, c.G, 1e-9, "green at %v", tc.v)
		assert.InDelta(t, tc.b, c.B, 1e-9, "blue at %v", tc.v)
	}
}

func TestParseColorTheme(t *testing.T) {
	theme, err := ParseColorTheme("marine")
	require.NoError(t, err)
	assert.Equal(t, MarineTheme, theme)

	_, err = ParseColorTheme("rainbow")
	assert.Error(t, err)
}

func TestFractions(t *testing.T) {
	assert.Nil(t, fractions(0))
	assert.Equal(t, []float64{0}, fractions(1))
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, fractions(5))
}
