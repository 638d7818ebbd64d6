package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// instanceFile is the on-disk JSON structure of a named instance.
type instanceFile struct {
	Version   int               `json:"version"`
	Name      string            `json:"name"`
	Entries   map[string]*Entry `json:"entries"`
	UpdatedAt string            `json:"updated_at"`
}

// instancePath returns the backing file path for a named instance.
func instancePath(baseDir, name string) string {
	return filepath.Join(baseDir, StoreDir, name+".json")
}

// loadInstanceFile loads an instance from disk. A missing file yields an
// empty entry map with no error.
func loadInstanceFile(path string) (map[string]*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*Entry), nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var f instanceFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}

	if f.Entries == nil {
		f.Entries = make(map[string]*Entry)
	}
	return f.Entries, nil
}

// saveInstanceFile saves an instance to disk atomically via temp file +
// rename.
func saveInstanceFile(path string, entries map[string]*Entry) error {
	f := instanceFile{
		Version:   1,
		Name:      instanceName(path),
		Entries:   entries,
		UpdatedAt: time.Now().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// removeFile deletes a backing file, tolerating its absence.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove store file: %w", err)
	}
	return nil
}

func instanceName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// decodeValue round-trips a stored value through JSON into out. Values read
// back from disk are already generic JSON shapes; values set in-process may
// be arbitrary structs. Either way one marshal/unmarshal pass normalizes.
func decodeValue(value, out any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode stored value: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode stored value: %w", err)
	}
	return nil
}
