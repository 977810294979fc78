// Package doodle loads the drawing attached to a diary entry from a local PNG
// file and keeps it fresh while the REPL runs.
package doodle

import (
	"bytes"
	"fmt"
	"os"

	"github.com/docker/go-units"
)

// MaxBytes caps the doodle size accepted for upload and analysis.
const MaxBytes = 5 * units.MiB

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Load reads a doodle PNG from path and validates it.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read doodle: %w", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, fmt.Errorf("doodle %s is not a PNG file", path)
	}
	if len(data) > MaxBytes {
		return nil, fmt.Errorf("doodle %s is %s, the limit is %s", path,
			units.HumanSize(float64(len(data))), units.HumanSize(float64(MaxBytes)))
	}
	return data, nil
}
