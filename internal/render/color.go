package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for amplitude visualization.
type ColorTheme string

const (
	JetTheme       ColorTheme = "white_jet" // Jet with zero amplitude painted white
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white

	DefaultColorMapSize = 256
)

var themes = map[ColorTheme]func(float64) colorful.Color{
	JetTheme:       jet,
	ClassicTheme:   classic,
	GrayscaleTheme: grayscale,
	JungleTheme:    jungle,
	ThermalTheme:   thermal,
	MarineTheme:    marine,
}

// ParseColorTheme returns the theme with the given name.
func ParseColorTheme(name string) (ColorTheme, error) {
	if _, ok := themes[ColorTheme(name)]; !ok {
		return "", fmt.Errorf("unknown color theme: %q", name)
	}
	return ColorTheme(name), nil
}

// ColorMapper maps amplitudes to colors through a pre-computed table.
type ColorMapper struct {
	colorMap    []colorful.Color
	theme       ColorTheme
	boundsMin   float64
	boundsRange float64
}

// NewColorMapper creates a mapper for amplitudes within [minValue, maxValue].
// Unknown themes fall back to JetTheme.
func NewColorMapper(theme ColorTheme, minValue, maxValue float64) *ColorMapper {
	fn, ok := themes[theme]
	if !ok {
		theme, fn = JetTheme, jet
	}

	cm := &ColorMapper{
		colorMap:    make([]colorful.Color, DefaultColorMapSize),
		theme:       theme,
		boundsMin:   minValue,
		boundsRange: maxValue - minValue,
	}
	for i := range cm.colorMap {
		cm.colorMap[i] = fn(float64(i) / float64(DefaultColorMapSize-1))
	}
	if theme == JetTheme {
		cm.colorMap[0] = colorful.Color{R: 1, G: 1, B: 1}
	}
	return cm
}

func (cm *ColorMapper) index(v float64) int {
	if cm.boundsRange <= 0 || math.IsNaN(v) {
		return 0
	}

	index := int((v - cm.boundsMin) / cm.boundsRange * float64(len(cm.colorMap)-1))
	return max(0, min(index, len(cm.colorMap)-1))
}

// Color returns the color of an amplitude; values outside the bounds are clamped.
func (cm *ColorMapper) Color(v float64) color.Color {
	return cm.colorMap[cm.index(v)]
}

func (cm *ColorMapper) blend(base color.Color, v, alpha float64) color.Color {
	c, _ := colorful.MakeColor(base)
	return c.BlendRgb(cm.colorMap[cm.index(v)], alpha).Clamped()
}

func (cm *ColorMapper) Theme() ColorTheme {
	return cm.theme
}

// jet reproduces the piecewise linear jet color map.
func jet(v float64) colorful.Color {
	return colorful.Color{
		R: interpolate(v, []float64{0, 0.35, 0.66, 0.89, 1}, []float64{0, 0, 1, 1, 0.5}),
		G: interpolate(v, []float64{0, 0.125, 0.375, 0.64, 0.91, 1}, []float64{0, 0, 1, 1, 0, 0}),
		B: interpolate(v, []float64{0, 0.11, 0.34, 0.65, 1}, []float64{0.5, 1, 1, 0, 0}),
	}
}

func interpolate(v float64, xs, ys []float64) float64 {
	if v <= xs[0] {
		return ys[0]
	}
	for i := 1; i < len(xs); i++ {
		if v <= xs[i] {
			t := (v - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}

func classic(v float64) colorful.Color {
	return colorful.Hsv(240-(v*240), 0.9+(v*0.1), math.Pow(v, 0.7))
}

func grayscale(v float64) colorful.Color {
	g := math.Pow(v, 0.7)
	return colorful.Color{R: g, G: g, B: g}
}

func jungle(v float64) colorful.Color {
	return colorful.Hsv(120-(v*60), 1.0, 0.3+(math.Pow(v, 0.6)*0.7))
}

func thermal(v float64) colorful.Color {
	switch {
	case v < 0.33:
		return colorful.Color{R: v * 3}
	case v < 0.66:
		return colorful.Color{R: 1, G: (v - 0.33) * 3}
	default:
		return colorful.Color{R: 1, G: 1, B: math.Min(1, (v-0.66)*3)}
	}
}

func marine(v float64) colorful.Color {
	return colorful.Hsv(240-(v*60), 1.0-(v*0.8), 0.3+(math.Pow(v, 0.6)*0.7))
}
