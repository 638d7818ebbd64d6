// Package history records reversible mutations as a linear timeline with
// bounded undo/redo stacks. The store owns its entries exclusively: callers
// hand entries in and receive copies of stack state out, and entries only
// leave the stacks through capacity eviction.
package history

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vizedit/vizedit/internal/protocol"
)

// DefaultCapacity is the maximum retained undo entries.
const DefaultCapacity = 50

// Entry is one reversible mutation. An entry is immutable once created.
type Entry struct {
	ID          string              `json:"id"`
	Timestamp   int64               `json:"timestamp"`
	Kind        protocol.Kind       `json:"kind"`
	Target      protocol.ElementRef `json:"target"`
	Property    string              `json:"property,omitempty"`
	OldValue    string              `json:"oldValue"`
	NewValue    string              `json:"newValue"`
	Screenshot  string              `json:"screenshot,omitempty"`
	Description string              `json:"description"`
}

// NewEntry builds an entry from an applied change, stamping it with a
// timestamp-plus-random-suffix id and a deterministic description.
func NewEntry(applied protocol.ChangeApplied, screenshot string) Entry {
	ts := protocol.NowMillis()
	return Entry{
		ID:          fmt.Sprintf("%d-%s", ts, uuid.NewString()[:8]),
		Timestamp:   ts,
		Kind:        applied.Kind,
		Target:      applied.Target,
		Property:    applied.Property,
		OldValue:    applied.OldValue,
		NewValue:    applied.NewValue,
		Screenshot:  screenshot,
		Description: describe(applied),
	}
}

// describe renders a one-line human-readable summary. The output is a pure
// function of the change so identical edits always read identically.
func describe(c protocol.ChangeApplied) string {
	target := c.Target.Selector
	if target == "" {
		target = c.Target.TagName
	}

	switch c.Kind {
	case protocol.KindStyle:
		return fmt.Sprintf("Set %s of %s to %q (was %q)", c.Property, target, c.NewValue, c.OldValue)
	case protocol.KindClass:
		return fmt.Sprintf("Changed classes of %s to %q", target, c.NewValue)
	case protocol.KindText:
		return fmt.Sprintf("Replaced text of %s", target)
	case protocol.KindHTML:
		return fmt.Sprintf("Replaced markup of %s", target)
	case protocol.KindInsert:
		return fmt.Sprintf("Inserted %s", target)
	case protocol.KindDelete:
		return fmt.Sprintf("Deleted %s", target)
	case protocol.KindPosition:
		return fmt.Sprintf("Moved %s", target)
	default:
		return fmt.Sprintf("Edited %s", target)
	}
}

// State is a point-in-time snapshot of both stacks, delivered to listeners
// after every stack mutation.
type State struct {
	UndoCount int
	RedoCount int
	CanUndo   bool
	CanRedo   bool
	Position  int
}

// Listener receives stack-state snapshots. Listeners are invoked after the
// stack mutation has fully completed, never mid-operation.
type Listener func(State)

// Store holds the undo and redo stacks.
type Store struct {
	mu        sync.RWMutex
	undo      []Entry
	redo      []Entry
	capacity  int
	listeners []Listener
}

// NewStore creates a store with the given capacity. A non-positive capacity
// falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Subscribe registers a listener for stack-state changes.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Push appends a new mutation to the undo stack. The redo stack is cleared
// first: history is a linear timeline, branching is not supported. If the
// undo stack exceeds capacity the single oldest entry is evicted.
func (s *Store) Push(e Entry) {
	s.mu.Lock()

	s.redo = s.redo[:0]
	s.undo = append(s.undo, e)
	if len(s.undo) > s.capacity {
		s.undo = s.undo[1:]
	}

	state := s.stateLocked()
	listeners := s.listenersCopy()
	s.mu.Unlock()

	notify(listeners, state)
}

// PopUndo removes and returns the most recent undo entry. ok is false when
// the stack is empty. The entry is NOT pushed to redo here; the caller moves
// it with PushRedo once the reversal has been applied.
func (s *Store) PopUndo() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return Entry{}, false
	}
	e := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	return e, true
}

// PopRedo removes and returns the most recent redo entry.
func (s *Store) PopRedo() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return Entry{}, false
	}
	e := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	return e, true
}

// PushRedo places an undone entry onto the redo stack and notifies.
func (s *Store) PushRedo(e Entry) {
	s.mu.Lock()
	s.redo = append(s.redo, e)
	state := s.stateLocked()
	listeners := s.listenersCopy()
	s.mu.Unlock()

	notify(listeners, state)
}

// PushUndo places a redone entry back onto the undo stack and notifies.
// Unlike Push, the redo stack is left intact.
func (s *Store) PushUndo(e Entry) {
	s.mu.Lock()
	s.undo = append(s.undo, e)
	if len(s.undo) > s.capacity {
		s.undo = s.undo[1:]
	}
	state := s.stateLocked()
	listeners := s.listenersCopy()
	s.mu.Unlock()

	notify(listeners, state)
}

// Notify publishes the current stack state to all listeners. Used after an
// operation that popped without a matching push (e.g. a failed undo).
func (s *Store) Notify() {
	s.mu.RLock()
	state := s.stateLocked()
	listeners := s.listenersCopy()
	s.mu.RUnlock()

	notify(listeners, state)
}

// CanUndo reports whether the undo stack is non-empty.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.redo) > 0
}

// Position returns the current index into the combined timeline,
// len(undo)-1. An empty undo stack yields -1.
func (s *Store) Position() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo) - 1
}

// Len returns the total number of retained entries across both stacks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.undo) + len(s.redo)
}

// Timeline returns the full history in chronological order: the undo stack
// followed by the redo stack reversed.
func (s *Store) Timeline() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.undo)+len(s.redo))
	out = append(out, s.undo...)
	for i := len(s.redo) - 1; i >= 0; i-- {
		out = append(out, s.redo[i])
	}
	return out
}

// UndoSnapshot returns a copy of the undo stack, oldest first.
func (s *Store) UndoSnapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.undo...)
}

// RedoSnapshot returns a copy of the redo stack, oldest first.
func (s *Store) RedoSnapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.redo...)
}

// State returns the current stack-state snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	return State{
		UndoCount: len(s.undo),
		RedoCount: len(s.redo),
		CanUndo:   len(s.undo) > 0,
		CanRedo:   len(s.redo) > 0,
		Position:  len(s.undo) - 1,
	}
}

func (s *Store) listenersCopy() []Listener {
	return append([]Listener(nil), s.listeners...)
}

func notify(listeners []Listener, state State) {
	for _, l := range listeners {
		l(state)
	}
}

// Filter selects entries from the timeline. All set fields must match
// (conjunctive). Zero-value fields match everything.
type Filter struct {
	Kind        protocol.Kind
	Selector    string // substring match against the target selector
	Property    string // exact property name
	Description string // case-insensitive substring of the description
}

// Search returns the timeline entries matching the filter, in chronological
// order.
func (s *Store) Search(f Filter) []Entry {
	var out []Entry
	for _, e := range s.Timeline() {
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.Selector != "" && !strings.Contains(e.Target.Selector, f.Selector) {
			continue
		}
		if f.Property != "" && e.Property != f.Property {
			continue
		}
		if f.Description != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.Description)) {
			continue
		}
		out = append(out, e)
	}
	return out
}
