package insert

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/vizedit/vizedit/internal/protocol"
)

// Insertion positions relative to the anchor element.
const (
	PositionInside = "inside"
	PositionAfter  = "after"
)

// ErrNoTarget is returned when the drop coordinate resolves to no element.
var ErrNoTarget = errors.New("insert: no element at drop coordinate")

// Surface is the subset of the preview bridge the insertion engine needs.
type Surface interface {
	HitTest(ctx context.Context, x, y float64) (protocol.ElementInfo, error)
	Insert(ctx context.Context, req protocol.InsertComponent) (protocol.ComponentInserted, error)
	ShowDropZone(ctx context.Context, x, y float64) error
	HideDropZone(ctx context.Context) error
}

// Engine turns archetype drops into preview insertions.
type Engine struct {
	surface Surface
	recent  *RecentList
}

// NewEngine creates an insertion engine driving surface. recent may be nil
// when persistence is unavailable.
func NewEngine(surface Surface, recent *RecentList) *Engine {
	return &Engine{surface: surface, recent: recent}
}

// Anchor decides where a new node lands relative to the hit element. The
// check order matters: purpose-built empty containers are filled first,
// non-empty layout containers become siblings so repeated drops do not nest
// endlessly, and leaf elements never receive children.
func Anchor(info protocol.ElementInfo) string {
	switch {
	case info.Container && info.ChildCount == 0:
		return PositionInside
	case info.Archetype != "" && Lookup(info.Archetype).Layout && info.ChildCount > 0:
		return PositionAfter
	case info.Container && info.ChildCount > 0:
		return PositionAfter
	default:
		return PositionAfter
	}
}

// Drop hit-tests the coordinate, synthesizes markup for the archetype, and
// dispatches the insertion to the preview. The preview confirms the
// insertion asynchronously with a component-inserted message.
func (e *Engine) Drop(ctx context.Context, archetype string, x, y float64) (protocol.InsertComponent, error) {
	info, err := e.surface.HitTest(ctx, x, y)
	if err != nil {
		return protocol.InsertComponent{}, fmt.Errorf("insert: hit test at (%.0f, %.0f): %w", x, y, err)
	}
	if info.Ref.Selector == "" {
		return protocol.InsertComponent{}, ErrNoTarget
	}

	arch := Lookup(archetype)
	if !Known(archetype) {
		log.Printf("[WARN] insert: unknown archetype %q, inserting placeholder", archetype)
	}

	testID := NewTestID(arch.Name)
	req := protocol.InsertComponent{
		Archetype:      arch.Name,
		Markup:         arch.Markup(testID),
		AnchorSelector: info.Ref.Selector,
		Position:       Anchor(info),
		TestID:         testID,
	}

	if _, err := e.surface.Insert(ctx, req); err != nil {
		return protocol.InsertComponent{}, fmt.Errorf("insert: dispatch %s: %w", arch.Name, err)
	}

	log.Printf("[DEBUG] insert: %s %s %s (test id %s)", arch.Name, req.Position, info.Ref.Selector, testID)
	if e.recent != nil {
		e.recent.Touch(arch.Name)
	}
	return req, nil
}

// DragOver updates the drop-zone treatment for the element under the
// pointer. The preview guarantees at most one highlighted element at a time.
func (e *Engine) DragOver(ctx context.Context, x, y float64) error {
	return e.surface.ShowDropZone(ctx, x, y)
}

// DragEnd clears any drop-zone treatment.
func (e *Engine) DragEnd(ctx context.Context) error {
	return e.surface.HideDropZone(ctx)
}

// Recent returns the most-recently-used archetype names, newest first.
func (e *Engine) Recent() []string {
	if e.recent == nil {
		return nil
	}
	return e.recent.Names()
}
