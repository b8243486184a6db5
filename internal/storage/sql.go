package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

//go:embed indexes.sql
var initIndexesSQL string

const (
	insertIonogramSQL = `
INSERT INTO ionograms (
                       created_at,
                       transmitter,
                       receiver,
                       session_date,
                       session_time,
                       start_freq,
                       end_freq,
                       step_freq,
                       latency)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectIonogramSQL = `
SELECT
    id,
    created_at,
    transmitter,
    receiver,
    session_date,
    session_time,
    start_freq,
    end_freq,
    step_freq,
    latency
FROM ionograms
WHERE
    id = ?`

	selectIonogramsSQL = `
SELECT
    id,
    created_at,
    transmitter,
    receiver,
    session_date,
    session_time,
    start_freq,
    end_freq,
    step_freq,
    latency
FROM ionograms
ORDER BY id`

	insertBinSQL = `
INSERT INTO bins (
                  ionogram_id,
                  seq,
                  freq,
                  dist,
                  num_dist,
                  ampl)
VALUES `

	binValuesPlaceholder = "(?, ?, ?, ?, ?, ?)"

	selectBinsSQL = `
SELECT
    freq,
    dist,
    num_dist,
    ampl
FROM bins
WHERE
    ionogram_id = ?
    AND freq BETWEEN ? AND ?
    AND num_dist BETWEEN ? AND ?
ORDER BY seq`

	selectBinFilterValuesSQL = `
SELECT
    COALESCE(MIN(freq), 0),
    COALESCE(MAX(freq), 0),
    COALESCE(MIN(num_dist), 0),
    COALESCE(MAX(num_dist), 0)
FROM bins
WHERE ionogram_id = ?`
)

// maxBinsPerInsert keeps a multi-row insert below the SQLite bound
// variables limit (32766 since 3.32).
const maxBinsPerInsert = 5000
