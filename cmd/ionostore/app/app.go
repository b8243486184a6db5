package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/roman-kulish/ionogram/internal/grid"
	"github.com/roman-kulish/ionogram/internal/ionogram"
	"github.com/roman-kulish/ionogram/internal/storage"
)

// Run stores every configured dump. Dumps the grid builder rejects are logged
// and skipped; Run then reports how many were rejected.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	var stored, rejected int
	var bins int64
	for _, imp := range config.Imports {
		paths, err := expand(imp.Path)
		if err != nil {
			return err
		}

		for _, path := range paths {
			if err = ctx.Err(); err != nil {
				return err
			}

			ion, err := prepare(path, imp, config.Settings.Builder, logger)
			if err != nil {
				logger.Warn("rejected ionogram", slog.String("path", path), slog.String("error", err.Error()))
				rejected++
				continue
			}

			id, err := store.StoreIonogram(ctx, ion)
			if err != nil {
				return fmt.Errorf("storing %s: %w", path, err)
			}

			logger.Info("stored ionogram",
				slog.Int64("id", id),
				slog.String("path", path),
				slog.String("bins", humanize.Comma(int64(len(ion.Bins)))),
			)
			stored++
			bins += int64(len(ion.Bins))
		}
	}

	logger.Info("import finished",
		slog.Int("stored", stored),
		slog.Int("rejected", rejected),
		slog.String("bins", humanize.Comma(bins)),
		slog.String("database", config.Storage.Database),
	)

	if rejected > 0 {
		return fmt.Errorf("%d ionogram(s) rejected", rejected)
	}
	return nil
}

func expand(pattern string) ([]string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid import path '%s': %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match import path '%s'", pattern)
	}
	return paths, nil
}

// prepare reads a dump, applies the station overrides and checks that the
// ionogram builds.
func prepare(path string, imp ImportConfig, strategy grid.Strategy, logger *slog.Logger) (*ionogram.Ionogram, error) {
	ion, err := ionogram.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if imp.Transmitter != "" {
		ion.Passport.Transmitter = imp.Transmitter
	}
	if imp.Receiver != "" {
		ion.Passport.Receiver = imp.Receiver
	}

	b, err := grid.New(strategy, ion, grid.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if _, err = b.Process(); err != nil {
		return nil, err
	}
	return ion, nil
}
