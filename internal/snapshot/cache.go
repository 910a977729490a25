package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Veraticus/phone-manager/internal/model"
)

// Cache stores the previous sheet snapshot as a CSV file.
type Cache struct {
	path string
}

// NewCache creates a cache backed by the file at path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the cached snapshot. found is false when no snapshot has been
// written yet.
func (c *Cache) Load() (grid model.Grid, found bool, err error) {
	f, err := os.Open(c.path) // #nosec G304
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Grid{}, false, nil
		}
		return model.Grid{}, false, fmt.Errorf("failed to open snapshot cache: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return model.Grid{}, false, fmt.Errorf("failed to parse snapshot cache %s: %w", c.path, err)
	}

	return model.GridFromValues(records), true, nil
}

// Save replaces the cached snapshot with grid. The new content is written to a
// temporary file in the same directory and renamed over the old one, so an
// interrupted save leaves the previous snapshot intact.
func (c *Cache) Save(grid model.Grid) (err error) {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	for _, record := range grid.Values() {
		// Padding keeps blank rows from collapsing into empty lines, which
		// the CSV reader would skip.
		if err := w.Write(model.RawRow(record).Padded(model.MinRowWidth)); err != nil {
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace snapshot cache: %w", err)
	}

	return nil
}
