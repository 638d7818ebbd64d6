// Package store provides durable key-value storage over named instances.
// Each instance is one JSON file on disk; writes are atomic (temp file +
// rename) and last-writer-wins. The editing session is single-operator and
// single-process, so no cross-process locking is attempted.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound is returned when a key doesn't exist.
var ErrNotFound = errors.New("key not found")

// StoreDir is the directory within the project for persisted editor state.
const StoreDir = ".vizedit/store"

// Entry is a stored value with timestamps.
type Entry struct {
	Value     any       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Instance is one named key-value namespace backed by a single file.
type Instance struct {
	name string
	path string

	mu      sync.RWMutex
	once    sync.Once
	loadErr error
	entries map[string]*Entry
}

// Open returns the named instance rooted at baseDir. The backing file is
// created lazily on first write; opening a never-written instance is free.
func Open(baseDir, name string) *Instance {
	return &Instance{
		name: name,
		path: instancePath(baseDir, name),
	}
}

// Name returns the instance name.
func (in *Instance) Name() string { return in.name }

// Get retrieves the entry for key.
func (in *Instance) Get(key string) (*Entry, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if err := in.ensureLoaded(); err != nil {
		return nil, err
	}

	entry, ok := in.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

// GetJSON retrieves the value for key and decodes it into out.
func (in *Instance) GetJSON(key string, out any) error {
	entry, err := in.Get(key)
	if err != nil {
		return err
	}
	return decodeValue(entry.Value, out)
}

// Set stores value under key, preserving the original creation time on
// update, and persists the instance.
func (in *Instance) Set(key string, value any) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if err := in.ensureLoaded(); err != nil {
		return err
	}

	now := time.Now()
	if existing, ok := in.entries[key]; ok {
		in.entries[key] = &Entry{Value: value, CreatedAt: existing.CreatedAt, UpdatedAt: now}
	} else {
		in.entries[key] = &Entry{Value: value, CreatedAt: now, UpdatedAt: now}
	}

	return in.save()
}

// Remove deletes key. Removing a missing key returns ErrNotFound.
func (in *Instance) Remove(key string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if err := in.ensureLoaded(); err != nil {
		return err
	}

	if _, ok := in.entries[key]; !ok {
		return ErrNotFound
	}
	delete(in.entries, key)

	return in.save()
}

// Keys returns all keys in the instance.
func (in *Instance) Keys() ([]string, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if err := in.ensureLoaded(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(in.entries))
	for k := range in.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of stored entries.
func (in *Instance) Len() (int, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if err := in.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(in.entries), nil
}

// Clear removes every entry and deletes the backing file.
func (in *Instance) Clear() error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if err := in.ensureLoaded(); err != nil {
		return err
	}
	in.entries = make(map[string]*Entry)
	return removeFile(in.path)
}

// ensureLoaded reads the backing file on first access.
func (in *Instance) ensureLoaded() error {
	in.once.Do(func() {
		entries, err := loadInstanceFile(in.path)
		if err != nil {
			in.loadErr = fmt.Errorf("load store %q: %w", in.name, err)
			return
		}
		in.entries = entries
	})
	return in.loadErr
}

func (in *Instance) save() error {
	if err := saveInstanceFile(in.path, in.entries); err != nil {
		return fmt.Errorf("save store %q: %w", in.name, err)
	}
	return nil
}
