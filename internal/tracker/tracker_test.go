package tracker

import (
	"fmt"
	"testing"

	"github.com/vizedit/vizedit/internal/protocol"
	"github.com/vizedit/vizedit/internal/store"
)

func styleApplied(selector string) protocol.ChangeApplied {
	return protocol.ChangeApplied{
		Kind:     protocol.KindStyle,
		Target:   protocol.ElementRef{Selector: selector, DOMID: "el1", TestID: "btn"},
		Property: "color",
		OldValue: "blue",
		NewValue: "red",
		Found:    true,
	}
}

func TestTrackAppends(t *testing.T) {
	tr := New(store.Open(t.TempDir(), "edits"), "session-1")

	edit := tr.Track(styleApplied("#el1"), "Set color of #el1 to red")

	edits := tr.Edits()
	if len(edits) != 1 {
		t.Fatalf("log length = %d; want 1", len(edits))
	}
	if edits[0].ID != edit.ID {
		t.Errorf("logged id = %q; want %q", edits[0].ID, edit.ID)
	}
	if edits[0].ChangeType != "style" {
		t.Errorf("changeType = %q; want style", edits[0].ChangeType)
	}
	change, ok := edits[0].Changes["color"]
	if !ok {
		t.Fatalf("changes missing color field: %v", edits[0].Changes)
	}
	if change.Before != "blue" || change.After != "red" {
		t.Errorf("change = %+v", change)
	}
}

func TestTrackUndoDoesNotRemove(t *testing.T) {
	tr := New(store.Open(t.TempDir(), "edits"), "session-1")

	tr.Track(styleApplied("#el1"), "Set color of #el1 to red")
	tr.TrackUndo(styleApplied("#el1"), "Undo color change on #el1")

	edits := tr.Edits()
	if len(edits) != 2 {
		t.Fatalf("log length = %d; want 2", len(edits))
	}
	if edits[1].ChangeType != "undo" {
		t.Errorf("second entry changeType = %q; want undo", edits[1].ChangeType)
	}
}

func TestCapEvictsOldest(t *testing.T) {
	tr := New(store.Open(t.TempDir(), "edits"), "session-1")

	for i := 0; i < MaxEdits+5; i++ {
		tr.Track(styleApplied(fmt.Sprintf("#el%d", i)), fmt.Sprintf("edit %d", i))
	}

	edits := tr.Edits()
	if len(edits) != MaxEdits {
		t.Fatalf("log length = %d; want %d", len(edits), MaxEdits)
	}
	if edits[0].Description != "edit 5" {
		t.Errorf("oldest retained = %q; want edit 5", edits[0].Description)
	}
	if tr.Total() != MaxEdits+5 {
		t.Errorf("total = %d; want %d", tr.Total(), MaxEdits+5)
	}
}

func TestPersistsAcrossSessionsSameID(t *testing.T) {
	dir := t.TempDir()

	tr := New(store.Open(dir, "edits"), "session-1")
	tr.Track(styleApplied("#el1"), "first edit")
	tr.Track(styleApplied("#el2"), "second edit")

	restored := New(store.Open(dir, "edits"), "session-1")
	if len(restored.Edits()) != 2 {
		t.Fatalf("restored length = %d; want 2", len(restored.Edits()))
	}
	if restored.Total() != 2 {
		t.Errorf("restored total = %d; want 2", restored.Total())
	}

	other := New(store.Open(dir, "edits"), "session-2")
	if len(other.Edits()) != 0 {
		t.Errorf("other session sees %d edits; want 0", len(other.Edits()))
	}
}

func TestListenerActionsAndDetach(t *testing.T) {
	tr := New(store.Open(t.TempDir(), "edits"), "session-1")

	var actions []string
	detach := tr.Subscribe(func(edit VisualEdit, action string) {
		actions = append(actions, action)
	})

	tr.Track(styleApplied("#el1"), "edit")
	tr.TrackUndo(styleApplied("#el1"), "undo")
	detach()
	tr.Track(styleApplied("#el2"), "after detach")

	if len(actions) != 2 {
		t.Fatalf("listener fired %d times; want 2", len(actions))
	}
	if actions[0] != ActionAdd || actions[1] != ActionUndo {
		t.Errorf("actions = %v", actions)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	tr := New(store.Open(dir, "edits"), "session-1")
	tr.Track(styleApplied("#el1"), "edit")

	if err := tr.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(tr.Edits()) != 0 || tr.Total() != 0 {
		t.Error("Clear did not reset state")
	}

	restored := New(store.Open(dir, "edits"), "session-1")
	if len(restored.Edits()) != 0 {
		t.Error("persisted blob survived Clear")
	}
}
