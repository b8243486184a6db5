package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/roman-kulish/ionogram/internal/grid"
	"github.com/roman-kulish/ionogram/internal/render"
	"gopkg.in/yaml.v3"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// Probe is a physical point whose grid coordinates are reported after the build.
type Probe struct {
	FreqMHz float64
	DelayMs float64
}

type Config struct {
	DBPath     string
	IonogramID int64
	JSONPath   string
	OutputFile string
	Format     ImageFormat
	Builder    grid.Strategy
	StylePath  string
	Render     render.RenderConfig
	Probe      *Probe
	Verbose    bool
}

// style is the layout of the YAML style file.
type style struct {
	render.RenderConfig `yaml:",inline"`
	Builder             grid.Strategy `yaml:"builder"`
}

func NewConfig() *Config {
	return &Config{
		Format:  ImagePNG,
		Builder: grid.StrategySimple,
		Render:  render.DefaultRenderConfig(),
	}
}

func NewConfigFromCLI() (*Config, error) {
	return ParseConfig(flag.CommandLine, os.Args[1:])
}

// ParseConfig builds the configuration from defaults, then the style file,
// then the flags explicitly given on the command line.
func ParseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var (
		imageFormat  string
		builder      string
		theme        string
		alpha, dpi   float64
		scale        int
		noColorbar   bool
		freq, delay  float64
		hasFreqProbe bool
	)
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.IonogramID, "id", 0, "Ionogram ID in the database")
	fs.StringVar(&c.JSONPath, "json", "", "Path to an ionogram JSON dump, used instead of the database")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&builder, "builder", string(grid.StrategySimple), "Amplitude grid builder. [simple, decibel]")
	fs.StringVar(&c.StylePath, "style", "", "Path to a YAML style file")
	fs.StringVar(&theme, "theme", string(render.JetTheme), "Color theme. [white_jet, classic, grayscale, jungle, thermal, marine]")
	fs.Float64Var(&alpha, "alpha", render.DefaultAlpha, "Opacity of gridlines, labels and colorbar (0.0 - 1.0)")
	fs.Float64Var(&dpi, "dpi", render.DefaultDPI, "Image resolution, sizes the fonts")
	fs.IntVar(&scale, "scale", render.DefaultScale, "Pixels per grid cell")
	fs.BoolVar(&noColorbar, "no-colorbar", false, "Do not draw the colorbar")
	fs.Float64Var(&freq, "freq", 0, "Probe frequency in MHz, requires -delay")
	fs.Float64Var(&delay, "delay", 0, "Probe delay in ms, requires -freq")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.StylePath != "" {
		if err := c.loadStyle(c.StylePath); err != nil {
			return nil, fmt.Errorf("loading style file: %w", err)
		}
	}

	var hasDelayProbe bool
	var themeErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "builder":
			c.Builder = grid.Strategy(strings.ToLower(builder))
		case "theme":
			c.Render.Theme, themeErr = render.ParseColorTheme(strings.ToLower(theme))
		case "alpha":
			c.Render.Alpha = alpha
		case "dpi":
			c.Render.DPI = dpi
		case "scale":
			c.Render.Scale = scale
		case "no-colorbar":
			c.Render.Colorbar = !noColorbar
		case "freq":
			hasFreqProbe = true
		case "delay":
			hasDelayProbe = true
		}
	})

	imageFormat = strings.ToLower(imageFormat)

	var err error
	switch {
	case c.DBPath == "" && c.JSONPath == "":
		err = errors.New("either db path or json path is required")
	case c.DBPath != "" && c.JSONPath != "":
		err = errors.New("db path and json path are mutually exclusive")
	case c.DBPath != "" && c.IonogramID <= 0:
		err = errors.New("ionogram id is required")
	case c.OutputFile == "":
		err = errors.New("output file is required")
	case hasFreqProbe != hasDelayProbe:
		err = errors.New("probe requires both -freq and -delay")
	case themeErr != nil:
		err = themeErr
	}
	if err == nil {
		if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
			err = fmt.Errorf("invalid image format: %s", imageFormat)
		}
	}
	if err == nil && c.Builder != grid.StrategySimple && c.Builder != grid.StrategyDecibel {
		err = fmt.Errorf("invalid builder: %s", c.Builder)
	}
	if err == nil {
		err = c.Render.Validate()
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	if hasFreqProbe {
		c.Probe = &Probe{FreqMHz: freq, DelayMs: delay}
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}

func (c *Config) loadStyle(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	s := style{RenderConfig: c.Render, Builder: c.Builder}
	if err = yaml.Unmarshal(data, &s); err != nil {
		return err
	}

	c.Render = s.RenderConfig
	if s.Builder != "" {
		c.Builder = s.Builder
	}
	return nil
}
