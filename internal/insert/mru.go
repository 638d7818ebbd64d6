package insert

import (
	"errors"
	"log"
	"sync"

	"github.com/vizedit/vizedit/internal/store"
)

// MaxRecent caps the recently-used archetype list.
const MaxRecent = 10

const recentKey = "recent-archetypes"

// RecentList is the most-recently-used archetype list, persisted across
// sessions. Duplicates move to the front rather than appearing twice.
type RecentList struct {
	store *store.Instance

	mu    sync.Mutex
	names []string
}

// NewRecentList loads the persisted list from st. A missing or unreadable
// entry starts the list empty.
func NewRecentList(st *store.Instance) *RecentList {
	r := &RecentList{store: st}
	var names []string
	if err := st.GetJSON(recentKey, &names); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[WARN] insert: failed to load recent archetypes: %v", err)
		}
		return r
	}
	if len(names) > MaxRecent {
		names = names[:MaxRecent]
	}
	r.names = names
	return r
}

// Touch moves name to the front of the list, evicting the oldest entry when
// the cap is exceeded, and persists the result.
func (r *RecentList) Touch(name string) {
	r.mu.Lock()
	next := make([]string, 0, len(r.names)+1)
	next = append(next, name)
	for _, n := range r.names {
		if n != name {
			next = append(next, n)
		}
	}
	if len(next) > MaxRecent {
		next = next[:MaxRecent]
	}
	r.names = next
	snapshot := append([]string(nil), next...)
	r.mu.Unlock()

	if err := r.store.Set(recentKey, snapshot); err != nil {
		log.Printf("[WARN] insert: failed to persist recent archetypes: %v", err)
	}
}

// Names returns the list, most recent first.
func (r *RecentList) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
