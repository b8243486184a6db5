package ionogram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads an ionogram dump: one JSON object with the passport and the
// bins in sounder order.
func Decode(r io.Reader) (*Ionogram, error) {
	var ion Ionogram

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ion); err != nil {
		return nil, fmt.Errorf("decoding ionogram: %w", err)
	}
	return &ion, nil
}

// ReadFile decodes the ionogram dump stored at path.
func ReadFile(path string) (ion *Ionogram, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	return Decode(f)
}
