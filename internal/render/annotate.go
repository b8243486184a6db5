package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/roman-kulish/ionogram/internal/ionogram"
	"golang.org/x/image/font"
)

const (
	titleFontSize     = 20.0
	axisTitleFontSize = 12.0
	labelFontSize     = 10.0

	dashOn  = 4
	dashOff = 3

	colorbarTicks    = 5
	colorbarTickSize = 3

	frequencyTitle = "Frequency, MHz"
	delayTitle     = "Delay, ms"
)

type hAlign int

const (
	alignLeft hAlign = iota
	alignCenter
	alignRight
)

type vAlign int

const (
	alignTop vAlign = iota
	alignMiddle
	alignBottom
)

type annotation struct {
	msg string
	fn  func(*Plot, *ColorMapper) error
}

// annotator draws everything on top of the painted grid. All positions are
// fractions of the image size, so annotations scale with the grid.
type annotator struct {
	img     *image.RGBA
	ttf     *truetype.Font
	context *freetype.Context
	config  RenderConfig
	faces   map[float64]font.Face
}

func newAnnotator(ttf *truetype.Font, config RenderConfig, img *image.RGBA) *annotator {
	ctx := freetype.NewContext()
	ctx.SetDPI(config.DPI)
	ctx.SetFont(ttf)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.NewUniform(color.NRGBA{A: uint8(math.Round(config.Alpha * 255))}))
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)

	return &annotator{
		img:     img,
		ttf:     ttf,
		context: ctx,
		config:  config,
		faces:   make(map[float64]font.Face),
	}
}

func (a *annotator) Close() error {
	var errs []error
	for _, face := range a.faces {
		errs = append(errs, face.Close())
	}
	return errors.Join(errs...)
}

func (a *annotator) face(size float64) font.Face {
	face, ok := a.faces[size]
	if !ok {
		face = truetype.NewFace(a.ttf, &truetype.Options{
			Size:    size,
			DPI:     a.config.DPI,
			Hinting: font.HintingNone,
		})
		a.faces[size] = face
	}
	return face
}

func (a *annotator) size() (w, h float64) {
	s := a.img.Bounds().Size()
	return float64(s.X), float64(s.Y)
}

// pixelX maps a fraction of the horizontal extent to a column.
func (a *annotator) pixelX(t float64) int {
	w := a.img.Bounds().Dx()
	return max(0, min(int(t*float64(w)), w-1))
}

// pixelY maps a fraction of the vertical extent to a row, counting from the bottom.
func (a *annotator) pixelY(t float64) int {
	h := a.img.Bounds().Dy()
	return h - 1 - max(0, min(int(t*float64(h)), h-1))
}

// blendInk darkens a pixel towards black by the configured alpha.
func (a *annotator) blendInk(x, y int) {
	c, _ := colorful.MakeColor(a.img.At(x, y))
	a.img.Set(x, y, c.BlendRgb(colorful.Color{}, a.config.Alpha))
}

func (a *annotator) drawGridlines(*Plot, *ColorMapper) error {
	bounds := a.img.Bounds()

	for _, t := range fractions(a.config.Grid.Vertical) {
		x := a.pixelX(t)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			if y%(dashOn+dashOff) < dashOn {
				a.blendInk(x, y)
			}
		}
	}

	for _, t := range fractions(a.config.Grid.Horizontal) {
		y := a.pixelY(t)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if x%(dashOn+dashOff) < dashOn {
				a.blendInk(x, y)
			}
		}
	}

	return nil
}

// drawDelayScale labels the inner horizontal gridlines with their delay in ms.
func (a *annotator) drawDelayScale(p *Plot, _ *ColorMapper) error {
	w, h := a.size()
	ts := fractions(a.config.Grid.Horizontal)
	if len(ts) < 3 {
		return nil
	}

	for _, t := range ts[1 : len(ts)-1] {
		dist := p.Extent.DistMin + (p.Extent.DistMax-p.Extent.DistMin)*t
		label := fmt.Sprintf("%.2f", ionogram.DistToDelay(dist))
		if err := a.drawText(label, labelFontSize, 0.01*w, h-t*h, alignLeft, alignMiddle); err != nil {
			return err
		}
	}
	return nil
}

// drawFrequencyScale labels the inner vertical gridlines with their frequency in MHz.
func (a *annotator) drawFrequencyScale(p *Plot, _ *ColorMapper) error {
	w, h := a.size()
	ts := fractions(a.config.Grid.Vertical)
	if len(ts) < 3 {
		return nil
	}

	for _, t := range ts[1 : len(ts)-1] {
		freq := p.Extent.FreqMin + (p.Extent.FreqMax-p.Extent.FreqMin)*t
		label := fmt.Sprintf("%.1f", freq/1000)
		if err := a.drawText(label, labelFontSize, t*w, h-0.01*h, alignCenter, alignBottom); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) drawAxisTitles(*Plot, *ColorMapper) error {
	w, h := a.size()

	if err := a.drawText(frequencyTitle, axisTitleFontSize, 0.5*w, 0.9*h, alignCenter, alignTop); err != nil {
		return err
	}
	return a.drawRotatedText(delayTitle, axisTitleFontSize, int(0.08*w), int(0.5*h))
}

// drawTitle writes the transmitter-receiver pair over the session date and time.
func (a *annotator) drawTitle(p *Plot, _ *ColorMapper) error {
	w, h := a.size()

	lines := []string{
		fmt.Sprintf("%s-%s", p.Passport.Transmitter, p.Passport.Receiver),
		fmt.Sprintf("%s %s", p.Passport.SessionDate, p.Passport.SessionTime),
	}

	y := 0.03 * h
	lineHeight := float64(a.face(titleFontSize).Metrics().Height.Round())
	for _, line := range lines {
		if err := a.drawText(line, titleFontSize, 0.5*w, y, alignCenter, alignTop); err != nil {
			return err
		}
		y += lineHeight
	}
	return nil
}

// drawColorbar draws the amplitude scale on the right side, lowest value at
// the bottom, blended with the configured alpha.
func (a *annotator) drawColorbar(_ *Plot, colorMap *ColorMapper) error {
	w, h := a.size()
	bar := image.Rect(int(0.92*w), int(0.15*h), int(0.94*w), int(0.85*h)).Intersect(a.img.Bounds())
	if bar.Dx() < 1 || bar.Dy() < 2 {
		return nil
	}

	valueAt := func(y int) float64 {
		t := float64(bar.Max.Y-1-y) / float64(bar.Dy()-1)
		return colorMap.boundsMin + colorMap.boundsRange*t
	}

	for y := bar.Min.Y; y < bar.Max.Y; y++ {
		v := valueAt(y)
		for x := bar.Min.X; x < bar.Max.X; x++ {
			a.img.Set(x, y, colorMap.blend(a.img.At(x, y), v, a.config.Alpha))
		}
	}

	for x := bar.Min.X; x < bar.Max.X; x++ {
		a.blendInk(x, bar.Min.Y)
		a.blendInk(x, bar.Max.Y-1)
	}
	for y := bar.Min.Y + 1; y < bar.Max.Y-1; y++ {
		a.blendInk(bar.Min.X, y)
		a.blendInk(bar.Max.X-1, y)
	}

	for _, t := range fractions(colorbarTicks) {
		y := bar.Max.Y - 1 - int(math.Round(t*float64(bar.Dy()-1)))
		for x := bar.Max.X; x < bar.Max.X+colorbarTickSize && x < a.img.Bounds().Max.X; x++ {
			a.blendInk(x, y)
		}

		label := humanize.FtoaWithDigits(valueAt(y), 2)
		if err := a.drawText(label, labelFontSize, float64(bar.Max.X+2*colorbarTickSize), float64(y), alignLeft, alignMiddle); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) anchor(s string, face font.Face, x, y float64, h hAlign, v vAlign) (int, int) {
	width := font.MeasureString(face, s).Round()
	metrics := face.Metrics()
	ascent, descent := metrics.Ascent.Round(), metrics.Descent.Round()

	px := int(math.Round(x))
	switch h {
	case alignCenter:
		px -= width / 2
	case alignRight:
		px -= width
	}

	py := int(math.Round(y))
	switch v {
	case alignTop:
		py += ascent
	case alignMiddle:
		py += (ascent - descent) / 2
	case alignBottom:
		py -= descent
	}
	return px, py
}

func (a *annotator) drawText(s string, size, x, y float64, h hAlign, v vAlign) error {
	a.context.SetFontSize(size)

	px, py := a.anchor(s, a.face(size), x, y, h, v)
	if _, err := a.context.DrawString(s, freetype.Pt(px, py)); err != nil {
		return fmt.Errorf("drawing label %q: %w", s, err)
	}
	return nil
}

// drawRotatedText writes s bottom to top with its right edge at x, centered
// vertically on y.
func (a *annotator) drawRotatedText(s string, size float64, x, y int) error {
	face := a.face(size)
	metrics := face.Metrics()
	width := font.MeasureString(face, s).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	if width <= 0 || height <= 0 {
		return nil
	}

	text := image.NewRGBA(image.Rect(0, 0, width, height))
	a.context.SetFontSize(size)
	a.context.SetClip(text.Bounds())
	a.context.SetDst(text)
	defer func() {
		a.context.SetClip(a.img.Bounds())
		a.context.SetDst(a.img)
	}()

	if _, err := a.context.DrawString(s, freetype.Pt(0, metrics.Ascent.Round())); err != nil {
		return fmt.Errorf("drawing label %q: %w", s, err)
	}

	rotated := image.NewRGBA(image.Rect(0, 0, height, width))
	for ty := 0; ty < height; ty++ {
		for tx := 0; tx < width; tx++ {
			rotated.SetRGBA(ty, width-1-tx, text.RGBAAt(tx, ty))
		}
	}

	dst := image.Rect(x-height, y-width/2, x, y-width/2+width)
	draw.Draw(a.img, dst, rotated, image.Point{}, draw.Over)
	return nil
}

// fractions returns n evenly spaced values over [0, 1], both ends included.
func fractions(n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{0}
	}

	ts := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i) / float64(n-1)
	}
	return ts
}
