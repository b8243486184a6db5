package storage

import (
	"context"
	"errors"

	"github.com/roman-kulish/ionogram/internal/ionogram"
)

// ErrNotFound indicates that no ionogram exists with the requested ID.
var ErrNotFound = errors.New("ionogram not found")

// Store provides an interface for persisting parsed ionograms.
type Store interface {
	// StoreIonogram saves the passport and all bins of an ionogram in a single
	// transaction, keeping the bin order, and returns its unique identifier.
	StoreIonogram(ctx context.Context, ion *ionogram.Ionogram) (id int64, err error)

	// Record returns the stored passport of an ionogram.
	// Returns ErrNotFound if the ionogram does not exist.
	Record(ctx context.Context, id int64) (*Record, error)

	// Records returns every stored passport ordered by ID.
	Records(ctx context.Context) ([]*Record, error)

	// LoadIonogram reads an ionogram back with its bins in the stored order.
	LoadIonogram(ctx context.Context, id int64, opts ...ReaderOption) (*ionogram.Ionogram, error)

	// Close releases all database connections and resources.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)
