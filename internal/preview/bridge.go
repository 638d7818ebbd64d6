package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vizedit/vizedit/internal/protocol"
)

// DefaultAwaitTimeout bounds how long a host-side request waits for the
// preview's response message.
const DefaultAwaitTimeout = 10 * time.Second

// scriptReadyGrace is how long after a connection opens the bridge waits
// for the script-ready announcement before pushing the script itself.
const scriptReadyGrace = 3 * time.Second

var (
	// ErrNotConnected is returned when no preview page is attached.
	ErrNotConnected = errors.New("preview: no page connected")
	// ErrBusy is returned when a request of the same kind is already in
	// flight. There are no correlation ids; responses are matched to
	// requests purely by message kind.
	ErrBusy = errors.New("preview: request of this kind already in flight")
	// ErrTimeout is returned when the preview never answered.
	ErrTimeout = errors.New("preview: response timed out")
)

// Handlers receive unsolicited preview messages. Nil fields are skipped.
type Handlers struct {
	OnSelected        func(protocol.SelectedElement)
	OnNavigateRequest func(protocol.NavigateRequest)
	OnKeyChord        func(protocol.KeyChord)
	OnScriptReady     func(protocol.ScriptReady)
	OnInserted        func(protocol.ComponentInserted)
}

// Bridge is the host end of the preview WebSocket. It implements the
// surface interfaces the editor and insertion engines drive.
type Bridge struct {
	timeout  time.Duration
	handlers Handlers

	mu      sync.Mutex
	conn    *websocket.Conn
	ready   bool
	waiters map[string]chan json.RawMessage
}

// NewBridge creates a bridge using the default await timeout.
func NewBridge(handlers Handlers) *Bridge {
	return &Bridge{
		timeout:  DefaultAwaitTimeout,
		handlers: handlers,
		waiters:  make(map[string]chan json.RawMessage),
	}
}

// SetTimeout overrides the response await timeout.
func (b *Bridge) SetTimeout(d time.Duration) {
	b.mu.Lock()
	b.timeout = d
	b.mu.Unlock()
}

// Connected reports whether a preview page is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// Attach adopts a newly upgraded connection and runs its read loop until
// the connection closes. A new page replaces any previous one.
func (b *Bridge) Attach(conn *websocket.Conn) {
	b.mu.Lock()
	if b.conn != nil {
		b.conn.Close()
	}
	b.conn = conn
	b.ready = false
	b.mu.Unlock()

	log.Printf("[DEBUG] preview: page connected")
	go b.watchScriptReady(conn)
	b.readLoop(conn)
}

// watchScriptReady pushes the selection script over the bridge when the
// page never announces it. This covers pages the proxy could not inject,
// attempted automatically rather than surfaced as an error.
func (b *Bridge) watchScriptReady(conn *websocket.Conn) {
	time.Sleep(scriptReadyGrace)
	b.mu.Lock()
	stale := b.conn != conn
	ready := b.ready
	b.mu.Unlock()
	if stale || ready {
		return
	}
	log.Printf("[DEBUG] preview: script not announced, requesting load via bridge")
	if err := b.send(protocol.MsgLoadScript, protocol.LoadScript{URL: ScriptPath}); err != nil {
		log.Printf("[DEBUG] preview: script delivery fallback failed: %v", err)
	}
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		if b.conn == conn {
			b.conn = nil
		}
		b.mu.Unlock()
		conn.Close()
		log.Printf("[DEBUG] preview: page disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WARN] preview: malformed message: %v", err)
			continue
		}
		b.dispatch(msg.Type, msg.Payload)
	}
}

// dispatch hands a message to the waiter for its kind, or to the
// unsolicited-message handlers.
func (b *Bridge) dispatch(msgType string, payload json.RawMessage) {
	b.mu.Lock()
	if msgType == protocol.MsgScriptReady {
		b.ready = true
	}
	waiter, ok := b.waiters[msgType]
	if ok {
		delete(b.waiters, msgType)
	}
	b.mu.Unlock()

	if ok {
		waiter <- payload
		return
	}

	switch msgType {
	case protocol.MsgElementSelected:
		decodeTo(payload, b.handlers.OnSelected)
	case protocol.MsgNavigateRequest:
		decodeTo(payload, b.handlers.OnNavigateRequest)
	case protocol.MsgKeyChord:
		decodeTo(payload, b.handlers.OnKeyChord)
	case protocol.MsgScriptReady:
		decodeTo(payload, b.handlers.OnScriptReady)
	case protocol.MsgComponentInserted:
		decodeTo(payload, b.handlers.OnInserted)
	default:
		log.Printf("[DEBUG] preview: unhandled message kind %q", msgType)
	}
}

func decodeTo[T any](payload json.RawMessage, handler func(T)) {
	if handler == nil {
		return
	}
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		log.Printf("[WARN] preview: decode payload: %v", err)
		return
	}
	handler(v)
}

// send writes one envelope to the current connection.
func (b *Bridge) send(msgType string, payload any) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteJSON(protocol.Envelope{Type: msgType, Payload: payload})
}

// request sends an envelope and waits for the response message of the
// given kind. At most one request per response kind may be outstanding.
func (b *Bridge) request(ctx context.Context, msgType string, payload any, respType string) (json.RawMessage, error) {
	b.mu.Lock()
	if b.conn == nil {
		b.mu.Unlock()
		return nil, ErrNotConnected
	}
	if _, exists := b.waiters[respType]; exists {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBusy, respType)
	}
	waiter := make(chan json.RawMessage, 1)
	b.waiters[respType] = waiter
	timeout := b.timeout
	b.mu.Unlock()

	if err := b.send(msgType, payload); err != nil {
		b.abandon(respType)
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case resp := <-waiter:
		return resp, nil
	case <-timer.C:
		b.abandon(respType)
		return nil, fmt.Errorf("%w: %s", ErrTimeout, respType)
	case <-ctx.Done():
		b.abandon(respType)
		return nil, ctx.Err()
	}
}

func (b *Bridge) abandon(respType string) {
	b.mu.Lock()
	delete(b.waiters, respType)
	b.mu.Unlock()
}

// Apply sends a mutation and waits for the change-applied echo.
func (b *Bridge) Apply(ctx context.Context, req protocol.ApplyChange) (protocol.ChangeApplied, error) {
	raw, err := b.request(ctx, protocol.MsgApplyChange, req, protocol.MsgChangeApplied)
	if err != nil {
		return protocol.ChangeApplied{}, err
	}
	var applied protocol.ChangeApplied
	if err := json.Unmarshal(raw, &applied); err != nil {
		return protocol.ChangeApplied{}, fmt.Errorf("preview: decode change-applied: %w", err)
	}
	return applied, nil
}

// Insert sends synthesized markup and waits for the insertion report.
func (b *Bridge) Insert(ctx context.Context, req protocol.InsertComponent) (protocol.ComponentInserted, error) {
	raw, err := b.request(ctx, protocol.MsgInsertComponent, req, protocol.MsgComponentInserted)
	if err != nil {
		return protocol.ComponentInserted{}, err
	}
	var inserted protocol.ComponentInserted
	if err := json.Unmarshal(raw, &inserted); err != nil {
		return protocol.ComponentInserted{}, fmt.Errorf("preview: decode component-inserted: %w", err)
	}
	return inserted, nil
}

// HitTest resolves the element under a screen coordinate.
func (b *Bridge) HitTest(ctx context.Context, x, y float64) (protocol.ElementInfo, error) {
	raw, err := b.request(ctx, protocol.MsgHitTest, protocol.HitTest{X: x, Y: y}, protocol.MsgHitTestResult)
	if err != nil {
		return protocol.ElementInfo{}, err
	}
	var info protocol.ElementInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return protocol.ElementInfo{}, fmt.Errorf("preview: decode hit-test result: %w", err)
	}
	return info, nil
}

// Capture rasterizes the page and returns the image data URL. A page that
// cannot capture answers with an empty data URL, reported here as an
// error so callers degrade to no screenshot.
func (b *Bridge) Capture(ctx context.Context) (string, error) {
	raw, err := b.request(ctx, protocol.MsgCapture, nil, protocol.MsgScreenshotData)
	if err != nil {
		return "", err
	}
	var shot protocol.ScreenshotData
	if err := json.Unmarshal(raw, &shot); err != nil {
		return "", fmt.Errorf("preview: decode screenshot: %w", err)
	}
	if shot.DataURL == "" {
		return "", errors.New("preview: page returned empty capture")
	}
	return shot.DataURL, nil
}

// ShowDropZone highlights the element under the pointer as the insertion
// target. Fire and forget.
func (b *Bridge) ShowDropZone(ctx context.Context, x, y float64) error {
	return b.send(protocol.MsgShowDropZone, protocol.DropZone{X: x, Y: y})
}

// HideDropZone clears the drop-zone treatment.
func (b *Bridge) HideDropZone(ctx context.Context) error {
	return b.send(protocol.MsgHideDropZone, nil)
}

// Navigate tells the page to load a URL. The caller validates it first.
func (b *Bridge) Navigate(ctx context.Context, url string) error {
	return b.send(protocol.MsgNavigate, protocol.Navigate{URL: url})
}

// Load implements the navigation tracker's loader over the bridge.
func (b *Bridge) Load(url string) error {
	return b.Navigate(context.Background(), url)
}
