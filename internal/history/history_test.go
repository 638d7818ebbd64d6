package history

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/vizedit/vizedit/internal/protocol"
)

func styleEntry(selector, property, oldVal, newVal string) Entry {
	return NewEntry(protocol.ChangeApplied{
		Kind:     protocol.KindStyle,
		Target:   protocol.ElementRef{Selector: selector, TagName: "div"},
		Property: property,
		OldValue: oldVal,
		NewValue: newVal,
		Found:    true,
	}, "")
}

func TestPushClearsRedo(t *testing.T) {
	// Linear history: any number of undos followed by a new mutation must
	// leave the redo stack empty.
	for undos := 0; undos <= 3; undos++ {
		t.Run(fmt.Sprintf("after_%d_undos", undos), func(t *testing.T) {
			s := NewStore(10)
			for i := 0; i < 3; i++ {
				s.Push(styleEntry("#a", "color", "", "red"))
			}
			for i := 0; i < undos; i++ {
				e, ok := s.PopUndo()
				if !ok {
					t.Fatalf("PopUndo %d failed", i)
				}
				s.PushRedo(e)
			}

			s.Push(styleEntry("#a", "color", "red", "blue"))

			if s.CanRedo() {
				t.Errorf("redo stack not empty after new mutation (undos=%d)", undos)
			}
		})
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := NewStore(5)

	var first Entry
	for i := 0; i < 6; i++ {
		e := styleEntry(fmt.Sprintf("#el%d", i), "color", "", "red")
		if i == 0 {
			first = e
		}
		s.Push(e)
	}

	undo := s.UndoSnapshot()
	if len(undo) != 5 {
		t.Fatalf("undo length = %d; want 5", len(undo))
	}
	for _, e := range undo {
		if e.ID == first.ID {
			t.Errorf("oldest entry still present after eviction")
		}
	}
	if undo[0].Target.Selector != "#el1" {
		t.Errorf("oldest retained entry = %s; want #el1", undo[0].Target.Selector)
	}
}

func TestPopUndoEmpty(t *testing.T) {
	s := NewStore(5)

	if _, ok := s.PopUndo(); ok {
		t.Error("PopUndo on empty stack returned ok")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("empty store reports undo/redo available")
	}
	if s.Position() != -1 {
		t.Errorf("Position = %d; want -1", s.Position())
	}
}

func TestTimelineOrder(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 4; i++ {
		s.Push(styleEntry(fmt.Sprintf("#el%d", i), "color", "", "red"))
	}

	// Undo twice, moving entries to redo.
	for i := 0; i < 2; i++ {
		e, _ := s.PopUndo()
		s.PushRedo(e)
	}

	tl := s.Timeline()
	if len(tl) != 4 {
		t.Fatalf("timeline length = %d; want 4", len(tl))
	}
	for i, e := range tl {
		want := fmt.Sprintf("#el%d", i)
		if e.Target.Selector != want {
			t.Errorf("timeline[%d] = %s; want %s", i, e.Target.Selector, want)
		}
	}
	if s.Position() != 1 {
		t.Errorf("Position = %d; want 1", s.Position())
	}
}

func TestListenerOrdering(t *testing.T) {
	s := NewStore(10)

	var states []State
	s.Subscribe(func(st State) {
		states = append(states, st)
	})

	s.Push(styleEntry("#a", "color", "", "red"))
	if len(states) != 1 {
		t.Fatalf("listener fired %d times; want 1", len(states))
	}
	// The listener must observe the post-mutation state, never a transient.
	if states[0].UndoCount != 1 || states[0].CanUndo != true || states[0].CanRedo != false {
		t.Errorf("listener saw state %+v", states[0])
	}

	e, _ := s.PopUndo()
	s.PushRedo(e)
	last := states[len(states)-1]
	if last.UndoCount != 0 || !last.CanRedo {
		t.Errorf("listener saw state %+v after undo", last)
	}
}

func TestSearchFiltersAreConjunctive(t *testing.T) {
	s := NewStore(10)
	s.Push(styleEntry("#header", "color", "", "red"))
	s.Push(styleEntry("#header", "font-size", "", "16px"))
	s.Push(styleEntry("#footer", "color", "", "blue"))

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by kind", Filter{Kind: protocol.KindStyle}, 3},
		{"by selector substring", Filter{Selector: "header"}, 2},
		{"by property", Filter{Property: "color"}, 2},
		{"selector and property", Filter{Selector: "header", Property: "color"}, 1},
		{"description substring", Filter{Description: "font-size"}, 1},
		{"no match", Filter{Selector: "header", Property: "margin"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Search(tt.filter)
			if len(got) != tt.want {
				t.Errorf("Search(%+v) returned %d entries; want %d", tt.filter, len(got), tt.want)
			}
		})
	}
}

func TestExport(t *testing.T) {
	s := NewStore(10)
	s.Push(styleEntry("#a", "color", "", "red"))
	s.Push(styleEntry("#b", "color", "", "blue"))
	e, _ := s.PopUndo()
	s.PushRedo(e)

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var ex Export
	if err := json.Unmarshal(data, &ex); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}

	if ex.Total != 2 {
		t.Errorf("Total = %d; want 2", ex.Total)
	}
	if ex.Position != 0 {
		t.Errorf("Position = %d; want 0", ex.Position)
	}
	if len(ex.Undo) != 1 || len(ex.Redo) != 1 {
		t.Errorf("stacks = %d/%d; want 1/1", len(ex.Undo), len(ex.Redo))
	}
	if ex.ExportedAt == "" {
		t.Error("ExportedAt empty")
	}
}

func TestDescriptionDeterministic(t *testing.T) {
	c := protocol.ChangeApplied{
		Kind:     protocol.KindStyle,
		Target:   protocol.ElementRef{Selector: "#b1"},
		Property: "color",
		OldValue: "",
		NewValue: "red",
	}
	e1 := NewEntry(c, "")
	e2 := NewEntry(c, "")

	if e1.Description != e2.Description {
		t.Errorf("descriptions differ: %q vs %q", e1.Description, e2.Description)
	}
	if e1.Description != `Set color of #b1 to "red" (was "")` {
		t.Errorf("unexpected description: %q", e1.Description)
	}
	if e1.ID == e2.ID {
		t.Error("ids collide")
	}
}
