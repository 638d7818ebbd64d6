// Package editor is the single authority for turning edit requests into
// preview mutations, building undo/redo history, and replaying it.
package editor

import (
	"context"
	"log"
	"sync"

	"github.com/vizedit/vizedit/internal/history"
	"github.com/vizedit/vizedit/internal/protocol"
	"github.com/vizedit/vizedit/internal/screenshot"
	"github.com/vizedit/vizedit/internal/tracker"
)

// Surface is the preview seen from the host side. internal/preview
// implements it over the bridge; tests substitute a fake. Every call is
// asynchronous message passing underneath, never direct document access.
type Surface interface {
	Apply(ctx context.Context, req protocol.ApplyChange) (protocol.ChangeApplied, error)
	Insert(ctx context.Context, req protocol.InsertComponent) (protocol.ComponentInserted, error)
	HitTest(ctx context.Context, x, y float64) (protocol.ElementInfo, error)
	Capture(ctx context.Context) (string, error)
	ShowDropZone(ctx context.Context, x, y float64) error
	HideDropZone(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
}

// Engine owns the undo/redo stacks and drives a Surface. Operations are
// serialized through a single mutex; the design assumes one operator acting
// one step at a time.
type Engine struct {
	history *history.Store
	shots   *screenshot.Store
	edits   *tracker.Tracker

	mu        sync.Mutex
	surface   Surface
	selection *protocol.SelectedElement
}

// NewEngine creates an engine. shots and edits may be nil; the engine then
// skips screenshot persistence or audit logging respectively.
func NewEngine(hist *history.Store, shots *screenshot.Store, edits *tracker.Tracker) *Engine {
	return &Engine{history: hist, shots: shots, edits: edits}
}

// AttachSurface connects a preview. Replaces any previous surface.
func (e *Engine) AttachSurface(s Surface) {
	e.mu.Lock()
	e.surface = s
	e.mu.Unlock()
}

// DetachSurface disconnects the preview. Mutations become no-ops until a
// new surface attaches; history is kept.
func (e *Engine) DetachSurface() {
	e.mu.Lock()
	e.surface = nil
	e.mu.Unlock()
}

// SetSelection records the operator's current selection as reported by the
// selection script.
func (e *Engine) SetSelection(sel protocol.SelectedElement) {
	e.mu.Lock()
	e.selection = &sel
	e.mu.Unlock()
}

// ClearSelection drops the current selection.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	e.selection = nil
	e.mu.Unlock()
}

// Selection returns the current selection, if any.
func (e *Engine) Selection() (protocol.SelectedElement, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selection == nil {
		return protocol.SelectedElement{}, false
	}
	return *e.selection, true
}

// History exposes the history store's query surface.
func (e *Engine) History() *history.Store { return e.history }

func (e *Engine) current() (Surface, *protocol.SelectedElement) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface, e.selection
}

// ApplyChange mutates the currently selected element. Returns false as a
// silent no-op when no preview is attached or nothing is selected, since
// edit requests may race with selection changes. The target selector is
// recomputed from the selection on every call; the preview document may
// have been replaced since the last edit.
func (e *Engine) ApplyChange(ctx context.Context, kind protocol.Kind, property, value string) bool {
	surface, sel := e.current()
	if surface == nil {
		log.Printf("[DEBUG] editor: apply %s skipped, no preview attached", kind)
		return false
	}
	if sel == nil {
		log.Printf("[DEBUG] editor: apply %s skipped, nothing selected", kind)
		return false
	}

	selector := sel.Selector()

	// The value slot of a delete carries the restore token when the entry
	// is replayed on undo. A fresh delete always goes out empty so the
	// preview cannot mistake it for a restore.
	if kind == protocol.KindDelete {
		value = ""
	}

	// The before image must exist prior to the mutation. A failed capture
	// degrades to an entry without a screenshot.
	thumb := e.captureThumb(ctx, surface)

	applied, err := surface.Apply(ctx, protocol.ApplyChange{
		Kind:     kind,
		Selector: selector,
		Property: property,
		Value:    value,
	})
	if err != nil {
		log.Printf("[WARN] editor: apply %s to %s: %v", kind, selector, err)
		return false
	}
	if !applied.Found {
		log.Printf("[WARN] editor: apply %s: %s not found in preview", kind, selector)
		return false
	}

	entry := history.NewEntry(applied, thumb)
	e.history.Push(entry)

	if e.shots != nil && thumb != "" {
		if _, err := e.shots.Save(thumb, "", screenshot.TypeBefore, entry.ID); err != nil {
			log.Printf("[WARN] editor: persist screenshot for %s: %v", entry.ID, err)
		}
	}
	if e.edits != nil {
		e.edits.Track(applied, entry.Description)
	}

	log.Printf("[DEBUG] editor: applied %s", entry.Description)
	return true
}

// Undo reverts the most recent change. Returns false when there is nothing
// to undo, no preview is attached, or the entry's target no longer resolves
// in the current document. A stale-selector failure leaves the entry
// popped; it is not restored to the stack.
func (e *Engine) Undo(ctx context.Context) bool {
	surface, _ := e.current()
	if surface == nil {
		log.Printf("[DEBUG] editor: undo skipped, no preview attached")
		return false
	}

	entry, ok := e.history.PopUndo()
	if !ok {
		log.Printf("[DEBUG] editor: nothing to undo")
		return false
	}

	applied, err := surface.Apply(ctx, protocol.ApplyChange{
		Kind:     entry.Kind,
		Selector: entry.Target.Selector,
		Property: entry.Property,
		Value:    entry.OldValue,
	})
	if err != nil || !applied.Found {
		log.Printf("[WARN] editor: undo %s: target %s unavailable", entry.ID, entry.Target.Selector)
		e.history.Notify()
		return false
	}

	e.history.PushRedo(entry)
	if e.edits != nil {
		e.edits.TrackUndo(applied, "Undo: "+entry.Description)
	}
	return true
}

// Redo reapplies the most recently undone change. Same failure semantics
// as Undo.
func (e *Engine) Redo(ctx context.Context) bool {
	surface, _ := e.current()
	if surface == nil {
		log.Printf("[DEBUG] editor: redo skipped, no preview attached")
		return false
	}

	entry, ok := e.history.PopRedo()
	if !ok {
		log.Printf("[DEBUG] editor: nothing to redo")
		return false
	}

	applied, err := surface.Apply(ctx, protocol.ApplyChange{
		Kind:     entry.Kind,
		Selector: entry.Target.Selector,
		Property: entry.Property,
		Value:    entry.NewValue,
	})
	if err != nil || !applied.Found {
		log.Printf("[WARN] editor: redo %s: target %s unavailable", entry.ID, entry.Target.Selector)
		e.history.Notify()
		return false
	}

	e.history.PushUndo(entry)
	if e.edits != nil {
		e.edits.Track(applied, "Redo: "+entry.Description)
	}
	return true
}

// UndoN performs up to n undos and returns the count that succeeded. A
// stale-selector failure mid-batch reduces the count but does not stop the
// loop; the failed entry has already been consumed.
func (e *Engine) UndoN(ctx context.Context, n int) int {
	performed := 0
	for i := 0; i < n; i++ {
		if !e.history.CanUndo() {
			break
		}
		if e.Undo(ctx) {
			performed++
		}
	}
	return performed
}

// JumpTo replays history to put the cursor at index on the combined
// timeline. Out-of-range indices are a no-op returning false.
func (e *Engine) JumpTo(ctx context.Context, index int) bool {
	total := e.history.Len()
	if index < 0 || index >= total {
		return false
	}

	delta := index - e.history.Position()
	switch {
	case delta < 0:
		for i := 0; i < -delta; i++ {
			e.Undo(ctx)
		}
	case delta > 0:
		for i := 0; i < delta; i++ {
			e.Redo(ctx)
		}
	}
	return true
}

// HandleKey dispatches a keyboard chord relayed from the preview.
// Returns true when the chord mapped to an action.
func (e *Engine) HandleKey(ctx context.Context, chord protocol.KeyChord) bool {
	switch chord.Chord {
	case "mod+z":
		e.Undo(ctx)
		return true
	case "mod+y", "mod+shift+z":
		e.Redo(ctx)
		return true
	default:
		return false
	}
}

// captureThumb takes a pre-mutation capture and downscales it. Any failure
// returns an empty string; the edit proceeds without an image.
func (e *Engine) captureThumb(ctx context.Context, surface Surface) string {
	raw, err := surface.Capture(ctx)
	if err != nil {
		log.Printf("[DEBUG] editor: capture failed, continuing without screenshot: %v", err)
		return ""
	}
	thumb, err := screenshot.Thumbnail(raw, screenshot.ThumbWidth, screenshot.ThumbHeight)
	if err != nil {
		log.Printf("[DEBUG] editor: thumbnail failed, continuing without screenshot: %v", err)
		return ""
	}
	return thumb
}
