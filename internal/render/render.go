package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/roman-kulish/ionogram/internal/grid"
	"github.com/roman-kulish/ionogram/internal/ionogram"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	DefaultDPI   = 150.0
	DefaultScale = 1
	DefaultAlpha = 1.0

	DefaultVerticalLines   = 10
	DefaultHorizontalLines = 20
)

// GridlineConfig sets the number of dashed lines drawn across the image,
// including the lines on the image edges.
type GridlineConfig struct {
	Vertical   int `yaml:"vertical"`
	Horizontal int `yaml:"horizontal"`
}

// RenderConfig holds all configuration options for ionogram visualization
type RenderConfig struct {
	DPI      float64        `yaml:"dpi"`      // Resolution used to size fonts
	Scale    int            `yaml:"scale"`    // Pixels per grid cell
	Alpha    float64        `yaml:"alpha"`    // Opacity of gridlines, labels and colorbar
	Colorbar bool           `yaml:"colorbar"` // Draw the amplitude colorbar
	Theme    ColorTheme     `yaml:"theme"`
	Grid     GridlineConfig `yaml:"gridlines"`
}

// DefaultRenderConfig returns the configuration used when nothing is overridden.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		DPI:      DefaultDPI,
		Scale:    DefaultScale,
		Alpha:    DefaultAlpha,
		Colorbar: true,
		Theme:    JetTheme,
		Grid: GridlineConfig{
			Vertical:   DefaultVerticalLines,
			Horizontal: DefaultHorizontalLines,
		},
	}
}

// Validate checks the configuration ranges.
func (c RenderConfig) Validate() error {
	switch {
	case c.Alpha < 0 || c.Alpha > 1:
		return fmt.Errorf("alpha must be within [0, 1], got %g", c.Alpha)
	case c.DPI <= 0:
		return fmt.Errorf("dpi must be positive, got %g", c.DPI)
	case c.Scale <= 0:
		return fmt.Errorf("scale must be positive, got %d", c.Scale)
	case c.Grid.Vertical < 0 || c.Grid.Horizontal < 0:
		return errors.New("gridline count must not be negative")
	}
	if _, ok := themes[c.Theme]; !ok {
		return fmt.Errorf("unknown color theme: %q", c.Theme)
	}
	return nil
}

// Plot is a built amplitude grid together with the data needed to label it.
type Plot struct {
	Grid     *grid.AmplitudeGrid
	Extent   grid.Extent
	Passport ionogram.Passport
}

// NewPlot collects the grid and its physical extent from a built builder.
func NewPlot(b grid.ArrayBuilder, passport ionogram.Passport) (*Plot, error) {
	g, err := b.Grid()
	if err != nil {
		return nil, err
	}
	ext, err := b.Extent()
	if err != nil {
		return nil, err
	}
	return &Plot{Grid: g, Extent: ext, Passport: passport}, nil
}

// Renderer draws amplitude grids as ionogram images.
type Renderer struct {
	config RenderConfig
	font   *truetype.Font
}

// NewRenderer creates a new renderer with the given configuration
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &Renderer{config: config, font: parsedFont}, nil
}

// Render paints the grid with its row 0 at the bottom of the image, one cell
// per Scale x Scale pixels, and draws the annotations over it.
func (r *Renderer) Render(p *Plot) (*image.RGBA, error) {
	if p == nil || p.Grid == nil {
		return nil, errors.New("plot required")
	}

	rows, cols := p.Grid.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.New("empty grid")
	}

	img := image.NewRGBA(image.Rect(0, 0, cols*r.config.Scale, rows*r.config.Scale))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	colorMap := NewColorMapper(r.config.Theme, 0, p.Grid.Max())
	r.renderGrid(img, p.Grid, colorMap)

	ann := newAnnotator(r.font, r.config, img)
	defer ann.Close()

	ops := []annotation{
		{"drawing gridlines", ann.drawGridlines},
		{"drawing delay scale", ann.drawDelayScale},
		{"drawing frequency scale", ann.drawFrequencyScale},
		{"drawing axis titles", ann.drawAxisTitles},
		{"drawing title", ann.drawTitle},
	}
	if r.config.Colorbar {
		ops = append(ops, annotation{"drawing colorbar", ann.drawColorbar})
	}

	for _, op := range ops {
		if err := op.fn(p, colorMap); err != nil {
			return nil, fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return img, nil
}

func (r *Renderer) renderGrid(img *image.RGBA, g *grid.AmplitudeGrid, colorMap *ColorMapper) {
	rows, cols := g.Dims()
	scale := r.config.Scale
	bottom := img.Bounds().Max.Y

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := image.Rect(col*scale, bottom-(row+1)*scale, (col+1)*scale, bottom-row*scale)
			c := color.RGBAModel.Convert(colorMap.Color(g.At(row, col)))
			draw.Draw(img, cell, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
}
