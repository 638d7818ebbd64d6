// Package tracker keeps a flat, persisted audit log of every edit made in a
// session. It is independent of the undo/redo stacks: undoing an edit adds
// a new log entry rather than removing the original, so downstream
// consumers see the full sequence of what happened.
package tracker

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/vizedit/vizedit/internal/protocol"
	"github.com/vizedit/vizedit/internal/store"
)

// MaxEdits caps the session log, oldest evicted first.
const MaxEdits = 50

// Actions delivered to listeners alongside each tracked edit.
const (
	ActionAdd  = "add"
	ActionUndo = "undo"
)

// FieldChange is one before/after pair within an edit.
type FieldChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// VisualEdit is one audit-log record.
type VisualEdit struct {
	ID            string                 `json:"id"`
	Timestamp     int64                  `json:"timestamp"`
	ElementID     string                 `json:"elementId,omitempty"`
	ElementTestID string                 `json:"elementTestId,omitempty"`
	ChangeType    string                 `json:"changeType"`
	Changes       map[string]FieldChange `json:"changes"`
	Description   string                 `json:"description"`
}

// session is the persisted blob layout.
type session struct {
	SessionID    string       `json:"sessionId"`
	Edits        []VisualEdit `json:"edits"`
	TotalChanges int          `json:"totalChanges"`
}

// Listener receives every newly tracked edit with its action tag.
type Listener func(edit VisualEdit, action string)

// Tracker is a session-scoped edit log persisted under the session id.
type Tracker struct {
	kv        *store.Instance
	sessionID string

	mu        sync.Mutex
	edits     []VisualEdit
	total     int
	listeners map[int]Listener
	nextID    int
}

// New opens the log for sessionID, restoring any persisted edits.
func New(kv *store.Instance, sessionID string) *Tracker {
	t := &Tracker{
		kv:        kv,
		sessionID: sessionID,
		listeners: make(map[int]Listener),
	}
	var sess session
	if err := kv.GetJSON(sessionID, &sess); err == nil {
		t.edits = sess.Edits
		t.total = sess.TotalChanges
	}
	return t
}

// SessionID returns the id this log persists under.
func (t *Tracker) SessionID() string { return t.sessionID }

// Track appends an edit derived from an applied change and notifies
// listeners with the add action.
func (t *Tracker) Track(applied protocol.ChangeApplied, description string) VisualEdit {
	edit := VisualEdit{
		ID:            newEditID(),
		Timestamp:     protocol.NowMillis(),
		ElementID:     applied.Target.DOMID,
		ElementTestID: applied.Target.TestID,
		ChangeType:    string(applied.Kind),
		Changes:       changesFor(applied),
		Description:   description,
	}
	t.append(edit, ActionAdd)
	return edit
}

// TrackUndo appends an undo pseudo-entry for a previously applied change.
// Prior entries are never removed.
func (t *Tracker) TrackUndo(applied protocol.ChangeApplied, description string) VisualEdit {
	edit := VisualEdit{
		ID:            newEditID(),
		Timestamp:     protocol.NowMillis(),
		ElementID:     applied.Target.DOMID,
		ElementTestID: applied.Target.TestID,
		ChangeType:    "undo",
		Changes:       changesFor(applied),
		Description:   description,
	}
	t.append(edit, ActionUndo)
	return edit
}

// Edits returns a copy of the log, oldest first.
func (t *Tracker) Edits() []VisualEdit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]VisualEdit(nil), t.edits...)
}

// Total returns the number of edits ever tracked this session, including
// evicted ones.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Subscribe registers a listener and returns a detach function.
func (t *Tracker) Subscribe(l Listener) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = l
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// Clear empties the log and removes the persisted blob.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	t.edits = nil
	t.total = 0
	t.mu.Unlock()
	err := t.kv.Remove(t.sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (t *Tracker) append(edit VisualEdit, action string) {
	t.mu.Lock()
	t.edits = append(t.edits, edit)
	if len(t.edits) > MaxEdits {
		t.edits = t.edits[len(t.edits)-MaxEdits:]
	}
	t.total++
	blob := session{SessionID: t.sessionID, Edits: t.edits, TotalChanges: t.total}
	listeners := make([]Listener, 0, len(t.listeners))
	for _, l := range t.listeners {
		listeners = append(listeners, l)
	}
	t.mu.Unlock()

	if err := t.kv.Set(t.sessionID, blob); err != nil {
		log.Printf("[WARN] tracker: persist session %s: %v", t.sessionID, err)
	}
	for _, l := range listeners {
		l(edit, action)
	}
}

func changesFor(applied protocol.ChangeApplied) map[string]FieldChange {
	field := applied.Property
	if field == "" {
		field = string(applied.Kind)
	}
	return map[string]FieldChange{
		field: {Before: applied.OldValue, After: applied.NewValue},
	}
}

func newEditID() string {
	return fmt.Sprintf("edit-%d-%s", protocol.NowMillis(), uuid.NewString()[:8])
}
