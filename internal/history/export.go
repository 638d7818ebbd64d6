package history

import (
	"encoding/json"
	"time"
)

// Export is the JSON debugging artifact produced by Store.Export. It is an
// audit dump, not a restore format; nothing re-imports it.
type Export struct {
	ExportedAt string  `json:"exported_at"`
	Total      int     `json:"total"`
	Position   int     `json:"position"`
	Undo       []Entry `json:"undo"`
	Redo       []Entry `json:"redo"`
}

// Export serializes both raw stacks plus the current cursor.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	ex := Export{
		ExportedAt: time.Now().Format(time.RFC3339),
		Total:      len(s.undo) + len(s.redo),
		Position:   len(s.undo) - 1,
		Undo:       append([]Entry(nil), s.undo...),
		Redo:       append([]Entry(nil), s.redo...),
	}
	s.mu.RUnlock()

	return json.MarshalIndent(ex, "", "  ")
}
