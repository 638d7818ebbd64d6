package tools

import (
	"context"
	"testing"

	"github.com/vizedit/vizedit/internal/editor"
	"github.com/vizedit/vizedit/internal/history"
)

func TestEditApplyRejectsUnappliableKinds(t *testing.T) {
	hist := history.NewStore(history.DefaultCapacity)
	et := &EditorTools{Engine: editor.NewEngine(hist, nil, nil), History: hist}
	handler := et.makeEditHandler()

	for _, kind := range []string{"position", "insert", "blink", ""} {
		t.Run("kind "+kind, func(t *testing.T) {
			res, _, err := handler(context.Background(), nil, EditInput{Action: "apply", Kind: kind})
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if res == nil || !res.IsError {
				t.Fatalf("kind %q was not rejected", kind)
			}
		})
	}

	if hist.Len() != 0 {
		t.Errorf("rejected kinds reached history: %d entries", hist.Len())
	}
}

func TestEditApplyDeletePassesKindGate(t *testing.T) {
	hist := history.NewStore(history.DefaultCapacity)
	et := &EditorTools{Engine: editor.NewEngine(hist, nil, nil), History: hist}
	handler := et.makeEditHandler()

	// Delete is a legal apply kind. With no preview attached it fails the
	// same soft way any other apply does, not as a tool error.
	res, out, err := handler(context.Background(), nil, EditInput{Action: "apply", Kind: "delete"})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res != nil {
		t.Fatal("delete kind rejected at the gate")
	}
	if out.Success {
		t.Error("apply succeeded with no preview attached")
	}
	if out.Message == "" {
		t.Error("soft failure carried no message")
	}
}
