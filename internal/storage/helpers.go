package storage

import (
	"database/sql"
	"errors"

	"github.com/roman-kulish/ionogram/internal/ionogram"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toBinData(ionogramID int64, seq int, b ionogram.MeasurementBin) *binData {
	return &binData{
		IonogramID: ionogramID,
		Seq:        seq,
		Freq:       int64(b.Freq),
		Dist:       b.Dist,
		NumDist:    int64(b.NumDist),
		Ampl:       b.Ampl,
	}
}

// scanRecord reads one ionograms row in the column order of selectIonogramSQL.
func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.CreatedAt,
		&rec.Passport.Transmitter,
		&rec.Passport.Receiver,
		&rec.Passport.SessionDate,
		&rec.Passport.SessionTime,
		&rec.Passport.StartFreq,
		&rec.Passport.EndFreq,
		&rec.Passport.StepFreq,
		&rec.Passport.Latency,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
