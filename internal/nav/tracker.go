// Package nav maintains the back/forward history of URLs visited by the
// preview context. This list is independent of the edit undo/redo stacks;
// traversing it never touches edit history.
package nav

import (
	"strings"
	"sync"
	"time"
)

// MaxEntries caps the retained navigation history.
const MaxEntries = 100

// Entry is one visited URL.
type Entry struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title,omitempty"`
}

// Update is delivered to listeners after every cursor or list mutation.
type Update struct {
	URL          string
	CanGoBack    bool
	CanGoForward bool
}

// Listener receives navigation updates. Listeners fire after the cursor and
// list have been fully updated.
type Listener func(Update)

// Loader reloads the preview at a URL. Implemented by the preview bridge.
type Loader interface {
	Load(url string) error
}

// Tracker is the back/forward history for the preview context.
type Tracker struct {
	loader Loader

	mu        sync.Mutex
	entries   []Entry
	cursor    int // index of the current entry, -1 when empty
	listeners []Listener
}

// NewTracker creates a tracker that reloads the preview through loader.
func NewTracker(loader Loader) *Tracker {
	return &Tracker{
		loader: loader,
		cursor: -1,
	}
}

// Subscribe registers a listener for navigation updates.
func (t *Tracker) Subscribe(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// blockedSchemes are URL schemes never acted on, regardless of origin.
// URLs reaching the tracker may come from content rendered inside the
// preview, so this is a security boundary, not input hygiene.
var blockedSchemes = []string{"javascript:", "data:", "vbscript:", "file:"}

// ValidateURL reports whether a URL is safe to navigate to. Matching is
// case-insensitive with surrounding whitespace trimmed.
func ValidateURL(raw string) bool {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return false
	}
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(u, scheme) {
			return false
		}
	}
	return true
}

// NavigateTo validates the URL, truncates any forward entries beyond the
// cursor, appends the new entry, enforces the retention cap, reloads the
// preview, and notifies listeners. Returns false without mutating state when
// the URL is rejected.
func (t *Tracker) NavigateTo(url string, title string) bool {
	if !ValidateURL(url) {
		return false
	}

	t.mu.Lock()

	// Standard browser-history semantics: anything ahead of the cursor is
	// discarded before the new entry lands.
	t.entries = t.entries[:t.cursor+1]
	t.entries = append(t.entries, Entry{URL: url, Timestamp: time.Now(), Title: title})
	t.cursor = len(t.entries) - 1

	if len(t.entries) > MaxEntries {
		drop := len(t.entries) - MaxEntries
		t.entries = t.entries[drop:]
		t.cursor -= drop
	}

	update := t.updateLocked()
	listeners := t.listenersCopy()
	t.mu.Unlock()

	t.load(url)
	notify(listeners, update)
	return true
}

// Record appends a URL observed from the preview's own load-completion
// event without triggering a reload. A repeat of the current URL is a no-op.
func (t *Tracker) Record(url string, title string) bool {
	if !ValidateURL(url) {
		return false
	}

	t.mu.Lock()
	if t.cursor >= 0 && t.entries[t.cursor].URL == url {
		// Update the title in place; the load event often arrives after
		// the navigation that produced it.
		t.entries[t.cursor].Title = title
		t.mu.Unlock()
		return true
	}

	t.entries = t.entries[:t.cursor+1]
	t.entries = append(t.entries, Entry{URL: url, Timestamp: time.Now(), Title: title})
	t.cursor = len(t.entries) - 1

	if len(t.entries) > MaxEntries {
		drop := len(t.entries) - MaxEntries
		t.entries = t.entries[drop:]
		t.cursor -= drop
	}

	update := t.updateLocked()
	listeners := t.listenersCopy()
	t.mu.Unlock()

	notify(listeners, update)
	return true
}

// GoBack moves the cursor one entry back and reloads the preview there.
// Returns false at the start of history.
func (t *Tracker) GoBack() bool {
	t.mu.Lock()
	if t.cursor <= 0 {
		t.mu.Unlock()
		return false
	}
	t.cursor--
	url := t.entries[t.cursor].URL
	update := t.updateLocked()
	listeners := t.listenersCopy()
	t.mu.Unlock()

	t.load(url)
	notify(listeners, update)
	return true
}

// GoForward moves the cursor one entry forward and reloads the preview
// there. Returns false at the end of history.
func (t *Tracker) GoForward() bool {
	t.mu.Lock()
	if t.cursor < 0 || t.cursor >= len(t.entries)-1 {
		t.mu.Unlock()
		return false
	}
	t.cursor++
	url := t.entries[t.cursor].URL
	update := t.updateLocked()
	listeners := t.listenersCopy()
	t.mu.Unlock()

	t.load(url)
	notify(listeners, update)
	return true
}

// Refresh re-requests the current URL without altering the history list.
// Returns false when there is no current entry.
func (t *Tracker) Refresh() bool {
	t.mu.Lock()
	if t.cursor < 0 {
		t.mu.Unlock()
		return false
	}
	url := t.entries[t.cursor].URL
	t.mu.Unlock()

	t.load(url)
	return true
}

// Current returns the entry under the cursor.
func (t *Tracker) Current() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cursor < 0 {
		return Entry{}, false
	}
	return t.entries[t.cursor], true
}

// CanGoBack reports whether GoBack would succeed.
func (t *Tracker) CanGoBack() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor > 0
}

// CanGoForward reports whether GoForward would succeed.
func (t *Tracker) CanGoForward() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor >= 0 && t.cursor < len(t.entries)-1
}

// Entries returns a copy of the history list, oldest first.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Cursor returns the index of the current entry, -1 when empty.
func (t *Tracker) Cursor() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

func (t *Tracker) updateLocked() Update {
	u := Update{
		CanGoBack:    t.cursor > 0,
		CanGoForward: t.cursor >= 0 && t.cursor < len(t.entries)-1,
	}
	if t.cursor >= 0 {
		u.URL = t.entries[t.cursor].URL
	}
	return u
}

func (t *Tracker) listenersCopy() []Listener {
	return append([]Listener(nil), t.listeners...)
}

func (t *Tracker) load(url string) {
	if t.loader == nil {
		return
	}
	// Load failures are the preview's problem to report; the history list
	// has already moved on.
	_ = t.loader.Load(url)
}

func notify(listeners []Listener, u Update) {
	for _, l := range listeners {
		l(u)
	}
}
