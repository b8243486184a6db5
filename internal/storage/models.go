package storage

import (
	"time"

	"github.com/roman-kulish/ionogram/internal/ionogram"
)

// Record is a stored ionogram passport with its storage metadata.
type Record struct {
	ID        int64             `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Passport  ionogram.Passport `json:"passport"`
}

type binData struct {
	IonogramID int64
	Seq        int
	Freq       int64
	Dist       float64
	NumDist    int64
	Ampl       float64
}
