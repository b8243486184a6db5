package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/roman-kulish/ionogram/internal/ionogram"
)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the SQLite database at dbPath.
// Connections are opened on first use and the schema is created by the
// first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) StoreIonogram(ctx context.Context, ion *ionogram.Ionogram) (id int64, err error) {
	if ion == nil {
		return 0, errors.New("ionogram required")
	}

	db, err := s.getWriteDB()
	if err != nil {
		return 0, fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	p := ion.Passport
	result, err := tx.ExecContext(ctx, insertIonogramSQL,
		p.Transmitter,
		p.Receiver,
		p.SessionDate,
		p.SessionTime,
		p.StartFreq,
		p.EndFreq,
		p.StepFreq,
		p.Latency,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting ionogram: %w", err)
	}

	if id, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("getting ionogram ID: %w", err)
	}

	for start := 0; start < len(ion.Bins); start += maxBinsPerInsert {
		end := min(start+maxBinsPerInsert, len(ion.Bins))
		if err = insertBins(ctx, tx, id, start, ion.Bins[start:end]); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return id, nil
}

// insertBins writes one batch of bins with a single multi-row insert.
// offset is the position of the first bin in the ionogram.
func insertBins(ctx context.Context, tx *sql.Tx, ionogramID int64, offset int, bins []ionogram.MeasurementBin) error {
	values := make([]any, 0, len(bins)*6)

	var sb strings.Builder
	sb.WriteString(insertBinSQL)

	for i, bin := range bins {
		data := toBinData(ionogramID, offset+i, bin)
		values = append(values,
			data.IonogramID,
			data.Seq,
			data.Freq,
			data.Dist,
			data.NumDist,
			data.Ampl,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(binValuesPlaceholder)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting bins: %w", err)
	}
	return nil
}

func (s *SqliteStore) Record(ctx context.Context, id int64) (rec *Record, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, selectIonogramSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	rec, err = scanRecord(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ionogram %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("scanning ionogram: %w", err)
	}
	return rec, nil
}

func (s *SqliteStore) Records(ctx context.Context) (records []*Record, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectIonogramsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying ionograms: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ionogram: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReadBins creates a BinReader over the bins of a stored ionogram.
// The returned reader must be closed after use. A reader instance should only
// be used from a single goroutine.
func (s *SqliteStore) ReadBins(ctx context.Context, id int64, opts ...ReaderOption) (*SqliteBinReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteBinReader(ctx, db, id, opts...)
}

// LoadIonogram reads a stored ionogram with all its bins, or with the bins
// selected by the reader options.
func (s *SqliteStore) LoadIonogram(ctx context.Context, id int64, opts ...ReaderOption) (ion *ionogram.Ionogram, err error) {
	reader, err := s.ReadBins(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	defer closeWithError(reader, &err)

	ion = &ionogram.Ionogram{Passport: reader.Record().Passport}
	for reader.Next(ctx) {
		ion.Bins = append(ion.Bins, reader.Current())
	}
	if err = reader.Error(); err != nil {
		return nil, fmt.Errorf("reading bins: %w", err)
	}
	return ion, nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var indexErr, writeErr, readErr error

		if s.writeDB != nil {
			if err := runSQLCommand(s.writeDB, initIndexesSQL); err != nil {
				indexErr = fmt.Errorf("creating indexes: %w", err)
			}

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(indexErr, writeErr, readErr)
	})

	return s.closeErr
}
