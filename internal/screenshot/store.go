package screenshot

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/vizedit/vizedit/internal/protocol"
	"github.com/vizedit/vizedit/internal/store"
)

// MaxRecords caps the persisted screenshot store.
const MaxRecords = 50

// Capture types.
const (
	TypeBefore = "before"
	TypeAfter  = "after"
)

// Metadata describes when and why a capture was taken.
type Metadata struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Prompt    string `json:"prompt,omitempty"`
	Type      string `json:"type"`
	ChangeID  string `json:"changeId,omitempty"`
}

// Record is one persisted capture.
type Record struct {
	ID       string   `json:"id"`
	DataURL  string   `json:"dataUrl"`
	Metadata Metadata `json:"metadata"`
}

// Store persists capture records keyed by id. Eviction scans the stored
// timestamps rather than tracking insertion order, so records written with
// backdated timestamps are evicted first.
type Store struct {
	kv *store.Instance
}

// NewStore creates a screenshot store backed by kv.
func NewStore(kv *store.Instance) *Store {
	return &Store{kv: kv}
}

// Save persists a capture and evicts the oldest records past the cap.
// Returns the stored record's id.
func (s *Store) Save(dataURL, prompt, captureType, changeID string) (string, error) {
	id := fmt.Sprintf("%d-%s", protocol.NowMillis(), uuid.NewString()[:8])
	rec := Record{
		ID:      id,
		DataURL: dataURL,
		Metadata: Metadata{
			ID:        id,
			Timestamp: protocol.NowMillis(),
			Prompt:    prompt,
			Type:      captureType,
			ChangeID:  changeID,
		},
	}
	if err := s.Put(rec); err != nil {
		return "", err
	}
	return id, nil
}

// Put persists a fully-formed record and evicts past the cap.
func (s *Store) Put(rec Record) error {
	if err := s.kv.Set(rec.ID, rec); err != nil {
		return fmt.Errorf("screenshot: persist %s: %w", rec.ID, err)
	}
	s.evict()
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	var rec Record
	if err := s.kv.GetJSON(id, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Remove deletes a record. Missing ids are not an error.
func (s *Store) Remove(id string) error {
	err := s.kv.Remove(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// List returns all records ordered newest first.
func (s *Store) List() ([]Record, error) {
	recs, err := s.all()
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Metadata.Timestamp > recs[j].Metadata.Timestamp
	})
	return recs, nil
}

// evict drops the earliest-timestamped records until the store is back
// under the cap. Unreadable entries count as oldest.
func (s *Store) evict() {
	recs, err := s.all()
	if err != nil {
		log.Printf("[WARN] screenshot: eviction scan failed: %v", err)
		return
	}
	if len(recs) <= MaxRecords {
		return
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Metadata.Timestamp < recs[j].Metadata.Timestamp
	})
	for _, rec := range recs[:len(recs)-MaxRecords] {
		if err := s.kv.Remove(rec.ID); err != nil {
			log.Printf("[WARN] screenshot: evict %s: %v", rec.ID, err)
		}
	}
}

func (s *Store) all() ([]Record, error) {
	keys, err := s.kv.Keys()
	if err != nil {
		return nil, err
	}
	recs := make([]Record, 0, len(keys))
	for _, key := range keys {
		var rec Record
		if err := s.kv.GetJSON(key, &rec); err != nil {
			recs = append(recs, Record{ID: key})
			continue
		}
		if rec.ID == "" {
			rec.ID = key
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
