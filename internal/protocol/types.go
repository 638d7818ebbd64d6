// Package protocol defines the message vocabulary exchanged between the
// editor host and the preview context. The two sides share no memory; every
// interaction is one of the discrete messages below, carried as JSON over
// the bridge WebSocket.
package protocol

import (
	"fmt"
	"time"
)

// Kind identifies the category of a mutation. Every dispatch site switches
// exhaustively over these values; an unknown kind is rejected up front.
type Kind string

const (
	KindStyle    Kind = "style"
	KindClass    Kind = "class"
	KindText     Kind = "text"
	KindHTML     Kind = "html"
	KindInsert   Kind = "insert"
	KindDelete   Kind = "delete"
	KindPosition Kind = "position"
)

// Valid reports whether k is a known mutation kind.
func (k Kind) Valid() bool {
	switch k {
	case KindStyle, KindClass, KindText, KindHTML, KindInsert, KindDelete, KindPosition:
		return true
	}
	return false
}

// Appliable reports whether k can be dispatched as an apply_change
// mutation. Insert flows through insert_component, and position has no
// in-page mutation path, so both are rejected before they reach the wire.
func (k Kind) Appliable() bool {
	switch k {
	case KindStyle, KindClass, KindText, KindHTML, KindDelete:
		return true
	}
	return false
}

// ElementRef is a structural reference to a node in the preview document.
// The selector is re-resolved against the live document every time it is
// used; a ref never wraps a live node handle, because the preview document
// may have been torn down and recreated since the ref was built.
type ElementRef struct {
	Selector string `json:"selector"`
	TagName  string `json:"tagName"`
	TestID   string `json:"testId,omitempty"`
	DOMID    string `json:"domId,omitempty"`
}

// Rect is a bounding box reported by the preview.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SelectedElement describes the node the operator clicked inside the preview.
// Text is truncated to 100 characters preview-side. ID is always populated:
// the selection script synthesizes element-<unix-ms> when the node has none.
type SelectedElement struct {
	ID        string `json:"id"`
	TagName   string `json:"tagName"`
	ClassName string `json:"className"`
	Text      string `json:"text"`
	TestID    string `json:"testId,omitempty"`
	Rect      Rect   `json:"rect"`
}

// Ref converts a selection into a re-resolvable structural reference.
func (s SelectedElement) Ref() ElementRef {
	return ElementRef{
		Selector: s.Selector(),
		TagName:  s.TagName,
		TestID:   s.TestID,
		DOMID:    s.ID,
	}
}

// Selector returns the CSS selector used to re-resolve the selection.
// Test ids win over ids: they survive hydration re-renders in the apps this
// tool edits, while framework-generated ids often do not.
func (s SelectedElement) Selector() string {
	if s.TestID != "" {
		return fmt.Sprintf(`[data-testid="%s"]`, s.TestID)
	}
	if s.ID != "" {
		return "#" + s.ID
	}
	return s.TagName
}

// ElementInfo describes the element found at a hit-test coordinate, with
// the structural facts the insertion anchor policy needs.
type ElementInfo struct {
	Ref        ElementRef `json:"ref"`
	ChildCount int        `json:"childCount"`
	Container  bool       `json:"container"`
	// Archetype is the value of the engine's data attribute when this
	// element was previously produced by the insertion engine, else empty.
	Archetype string `json:"archetype,omitempty"`
}

// Message type identifiers, host -> preview.
const (
	MsgApplyChange     = "apply_change"
	MsgInsertComponent = "insert_component"
	MsgShowDropZone    = "show_drop_zone"
	MsgHideDropZone    = "hide_drop_zone"
	MsgNavigate        = "navigate"
	MsgHitTest         = "hit_test"
	MsgCapture         = "capture"
	MsgLoadScript      = "load_script"
)

// Message type identifiers, preview -> host.
const (
	MsgElementSelected   = "element_selected"
	MsgChangeApplied     = "change_applied"
	MsgNavigateRequest   = "navigate_request"
	MsgComponentInserted = "component_inserted"
	MsgScriptReady       = "script_ready"
	MsgScreenshotData    = "screenshot_data"
	MsgHitTestResult     = "hit_test_result"
	MsgKeyChord          = "key_chord"
)

// Envelope is the wire frame for every bridge message. Payload is one of the
// structs below, keyed by Type. There is no correlation id: the bridge
// enforces at most one in-flight request per message kind instead.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ApplyChange asks the preview to mutate one element.
// For KindStyle, Property and Value carry one CSS property. For KindClass,
// Value is either a full replacement class string, "+name" to add one class
// or "-name" to remove one. For KindText/KindHTML, Value is the new content.
type ApplyChange struct {
	Kind     Kind   `json:"kind"`
	Selector string `json:"selector"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
}

// ChangeApplied is the preview's echo after applying a mutation. OldValue is
// read from the target immediately before the mutation, never inferred.
type ChangeApplied struct {
	Kind     Kind       `json:"kind"`
	Target   ElementRef `json:"target"`
	Property string     `json:"property,omitempty"`
	OldValue string     `json:"oldValue"`
	NewValue string     `json:"newValue"`
	Found    bool       `json:"found"`
}

// InsertComponent asks the preview to insert synthesized markup relative to
// an anchor element. Position is "inside" or "after".
type InsertComponent struct {
	Archetype      string `json:"archetype"`
	Markup         string `json:"markup"`
	AnchorSelector string `json:"anchorSelector"`
	Position       string `json:"position"`
	TestID         string `json:"testId"`
}

// ComponentInserted reports the outcome of an insertion.
type ComponentInserted struct {
	Archetype string `json:"archetype"`
	TestID    string `json:"testId"`
	Success   bool   `json:"success"`
	ElementID string `json:"elementId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// DropZone carries the pointer coordinate for drop-zone hit-testing.
type DropZone struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Navigate asks the preview to load a URL. The host validates the URL before
// sending; the preview treats it as trusted.
type Navigate struct {
	URL string `json:"url"`
}

// NavigateRequest is emitted by the selection script when the operator
// modifier-clicks a root-relative link. The URL originates from content
// rendered inside the preview and must be validated host-side.
type NavigateRequest struct {
	URL string `json:"url"`
}

// ScriptReady announces that the selection script connected and names the
// page it is running in. Doubles as the load-completion event for the
// navigation tracker.
type ScriptReady struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// LoadScript asks the page to pull the selection script from the host.
// Sent when response injection was not possible.
type LoadScript struct {
	URL string `json:"url"`
}

// HitTest asks the preview which element occupies a screen coordinate.
type HitTest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenshotData carries a rasterized capture of the preview as a data URL.
type ScreenshotData struct {
	DataURL string `json:"dataUrl"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Error   string `json:"error,omitempty"`
}

// KeyChord relays a host-level keyboard shortcut captured by the selection
// script, normalized to "mod+z" form ("mod" is command or ctrl).
type KeyChord struct {
	Chord string `json:"chord"`
}

// NowMillis returns the current time in Unix milliseconds, the timestamp
// unit used across the protocol.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
