package app

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/roman-kulish/ionogram/internal/grid"
	"github.com/roman-kulish/ionogram/internal/ionogram"
	"github.com/roman-kulish/ionogram/internal/render"
	"github.com/roman-kulish/ionogram/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	ion, err := loadIonogram(ctx, config)
	if err != nil {
		return fmt.Errorf("loading ionogram: %w", err)
	}

	p := ion.Passport
	logger.Info("loaded ionogram",
		slog.Group("passport",
			slog.String("transmitter", p.Transmitter),
			slog.String("receiver", p.Receiver),
			slog.String("session", p.SessionDate+" "+p.SessionTime),
			slog.String("startFreq", humanize.SIWithDigits(float64(p.StartFreq)*1e3, 3, "Hz")),
			slog.String("endFreq", humanize.SIWithDigits(float64(p.EndFreq)*1e3, 3, "Hz")),
			slog.String("stepFreq", humanize.SIWithDigits(float64(p.StepFreq)*1e3, 3, "Hz")),
		),
		slog.String("bins", humanize.Comma(int64(len(ion.Bins)))),
	)

	b, err := grid.New(config.Builder, ion, grid.WithLogger(logger))
	if err != nil {
		return err
	}
	if b, err = b.Process(); err != nil {
		return fmt.Errorf("building amplitude grid: %w", err)
	}

	g, err := b.Grid()
	if err != nil {
		return err
	}
	rows, cols := g.Dims()
	logger.Info("built amplitude grid",
		slog.String("builder", string(config.Builder)),
		slog.Int("rows", rows),
		slog.Int("cols", cols),
		slog.String("maxAmplitude", humanize.FtoaWithDigits(g.Max(), 2)),
	)

	if config.Probe != nil {
		if err = probe(b, config.Probe, logger); err != nil {
			return fmt.Errorf("probing point: %w", err)
		}
	}

	plot, err := render.NewPlot(b, ion.Passport)
	if err != nil {
		return err
	}

	renderer, err := render.NewRenderer(config.Render)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	logger.Info("rendering ionogram",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Render.Theme)),
			slog.Int("width", cols*config.Render.Scale),
			slog.Int("height", rows*config.Render.Scale),
		))

	img, err := renderer.Render(plot)
	if err != nil {
		return fmt.Errorf("rendering ionogram: %w", err)
	}

	return writeImage(config.OutputFile, config.Format, img)
}

func loadIonogram(ctx context.Context, config *Config) (*ionogram.Ionogram, error) {
	if config.JSONPath != "" {
		return ionogram.ReadFile(config.JSONPath)
	}

	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return nil, fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return store.LoadIonogram(ctx, config.IonogramID)
}

// probe logs where a physical point lands on the grid and the physical values
// the inverse mapping returns for the same normalized coordinates.
func probe(b grid.ArrayBuilder, pt *Probe, logger *slog.Logger) error {
	pos, err := b.PointPosition(pt.FreqMHz, pt.DelayMs)
	if err != nil {
		return err
	}

	phys, err := b.PhysicalValues(pos.TFreq, pos.TDelay)
	if err != nil {
		return err
	}

	logger.Info("probe point",
		slog.Group("input",
			slog.Float64("freqMHz", pt.FreqMHz),
			slog.Float64("delayMs", pt.DelayMs),
		),
		slog.Group("position",
			slog.Float64("tFreq", pos.TFreq),
			slog.Int("freqCoord", pos.FreqCoord),
			slog.Float64("tDelay", pos.TDelay),
			slog.Int("delayCoord", pos.DelayCoord),
		),
		slog.Group("inverse",
			slog.Float64("freqKHz", phys.Freq),
			slog.Float64("delayMs", phys.Delay),
		),
	)
	return nil
}

func writeImage(path string, format ImageFormat, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	switch format {
	case ImagePNG:
		err = png.Encode(out, img)
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		err = fmt.Errorf("invalid image format: %s", format)
	}
	return err
}
