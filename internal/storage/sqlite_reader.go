package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roman-kulish/ionogram/internal/ionogram"
)

// BinReader provides an iterator-based interface for reading the measurement
// bins of a stored ionogram in the order they were stored.
type BinReader interface {
	// Record returns the passport of the ionogram being read.
	Record() *Record

	// Next advances the iterator and returns true if there is another bin
	// to read, false when the iteration is complete or an error occurred.
	Next(context.Context) bool

	// Current returns the current bin. If called after Next() returns false,
	// the behavior is undefined.
	Current() ionogram.MeasurementBin

	// Error returns any error that occurred during iteration.
	Error() error

	// Close releases any resources associated with the reader.
	Close() error
}

// ReaderOption configures a SqliteBinReader with filtering criteria.
type ReaderOption func(*SqliteBinReader)

// WithFreqRange limits the reader to bins with frequencies, in kHz, within
// [minFreq, maxFreq].
func WithFreqRange(minFreq, maxFreq int) ReaderOption {
	return func(r *SqliteBinReader) {
		r.minFreq = &minFreq
		r.maxFreq = &maxFreq
	}
}

// WithNumDistRange limits the reader to bins with delay indices within
// [minNumDist, maxNumDist].
func WithNumDistRange(minNumDist, maxNumDist int) ReaderOption {
	return func(r *SqliteBinReader) {
		r.minNumDist = &minNumDist
		r.maxNumDist = &maxNumDist
	}
}

// SqliteBinReader implements BinReader for the SQLite backend.
type SqliteBinReader struct {
	db *sql.DB

	ionogramID int64
	record     *Record

	minFreq    *int // Optional minimum frequency filter
	maxFreq    *int // Optional maximum frequency filter
	minNumDist *int // Optional minimum delay index filter
	maxNumDist *int // Optional maximum delay index filter

	current ionogram.MeasurementBin
	rows    *sql.Rows
	err     error
}

var _ BinReader = (*SqliteBinReader)(nil)

func newSqliteBinReader(ctx context.Context, db *sql.DB, ionogramID int64, opts ...ReaderOption) (*SqliteBinReader, error) {
	r := &SqliteBinReader{
		db:         db,
		ionogramID: ionogramID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, nil
}

func (r *SqliteBinReader) init(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database connection required")
	}
	if r.ionogramID <= 0 {
		return errors.New("ionogram ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading ionogram", fn: r.loadRecord},
		{msg: "initializing filters", fn: r.initFilters},
		{msg: "initializing query", fn: r.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (r *SqliteBinReader) loadRecord(ctx context.Context) (err error) {
	stmt, err := r.db.PrepareContext(ctx, selectIonogramSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	rec, err := scanRecord(stmt.QueryRowContext(ctx, r.ionogramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: ionogram %d", ErrNotFound, r.ionogramID)
		}
		return fmt.Errorf("querying ionogram: %w", err)
	}

	r.record = rec
	return nil
}

func (r *SqliteBinReader) initFilters(ctx context.Context) (err error) {
	freqFiltersSet := r.minFreq != nil && r.maxFreq != nil
	numDistFiltersSet := r.minNumDist != nil && r.maxNumDist != nil

	if freqFiltersSet && *r.minFreq > *r.maxFreq {
		return fmt.Errorf("min frequency %d is greater than max frequency %d", *r.minFreq, *r.maxFreq)
	}
	if numDistFiltersSet && *r.minNumDist > *r.maxNumDist {
		return fmt.Errorf("min delay index %d is greater than max delay index %d", *r.minNumDist, *r.maxNumDist)
	}
	if freqFiltersSet && numDistFiltersSet {
		return nil
	}

	stmt, err := r.db.PrepareContext(ctx, selectBinFilterValuesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var minFreq, maxFreq, minNumDist, maxNumDist int
	if err = stmt.QueryRowContext(ctx, r.ionogramID).Scan(&minFreq, &maxFreq, &minNumDist, &maxNumDist); err != nil {
		return fmt.Errorf("scanning filters data: %w", err)
	}

	if !freqFiltersSet {
		r.minFreq, r.maxFreq = &minFreq, &maxFreq
	}
	if !numDistFiltersSet {
		r.minNumDist, r.maxNumDist = &minNumDist, &maxNumDist
	}
	return nil
}

func (r *SqliteBinReader) initQuery(ctx context.Context) (err error) {
	stmt, err := r.db.PrepareContext(ctx, selectBinsSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	r.rows, err = stmt.QueryContext(ctx, r.ionogramID, *r.minFreq, *r.maxFreq, *r.minNumDist, *r.maxNumDist)
	return err
}

func (r *SqliteBinReader) Record() *Record {
	return r.record
}

func (r *SqliteBinReader) Next(ctx context.Context) bool {
	if r.err != nil || r.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		r.err = ctx.Err()
		return false
	default:
	}

	if !r.rows.Next() {
		return false
	}

	var bin ionogram.MeasurementBin
	if err := r.rows.Scan(&bin.Freq, &bin.Dist, &bin.NumDist, &bin.Ampl); err != nil {
		r.err = fmt.Errorf("scanning bin: %w", err)
		return false
	}

	r.current = bin
	return true
}

func (r *SqliteBinReader) Current() ionogram.MeasurementBin {
	return r.current
}

func (r *SqliteBinReader) Error() error {
	if r.err != nil {
		return r.err
	}
	if r.rows != nil {
		return r.rows.Err()
	}
	return nil
}

func (r *SqliteBinReader) Close() error {
	if r.rows != nil {
		err := r.rows.Close()
		r.rows = nil
		return err
	}
	return nil
}
