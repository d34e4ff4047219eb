package media

import (
	"fmt"
	"io"
	"os"
)

// Spooler writes pending upload bytes to local disk so task payloads stay
// small. Spool files are removed by the worker after a successful upload.
type Spooler struct {
	dir string
}

// NewSpooler creates a spooler writing into dir.
func NewSpooler(dir string) *Spooler {
	return &Spooler{dir: dir}
}

// Spool copies the reader to a new spool file and returns its path and size.
func (s *Spooler) Spool(r io.Reader) (string, int64, error) {
	f, err := os.CreateTemp(s.dir, "media-upload-*.bin")
	if err != nil {
		return "", 0, fmt.Errorf("create spool file: %w", err)
	}

	size, err := io.Copy(f, r)
	closeErr := f.Close()
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("write spool file: %w", err)
	}
	if closeErr != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("close spool file: %w", closeErr)
	}

	return f.Name(), size, nil
}

// Remove deletes a spool file. Missing files are not an error.
func (s *Spooler) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
