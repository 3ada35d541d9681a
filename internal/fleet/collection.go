package fleet

import (
	"sync"
	"time"
)

// Collection is the fleet view held for one session. Writers are the full
// refresh cycle and manual single-printer refreshes; the last write per
// printer id wins.
type Collection struct {
	mu          sync.RWMutex
	order       []int
	byID        map[int]Entry
	loaded      bool
	refreshedAt time.Time
	lastErr     error
}

func NewCollection() *Collection {
	return &Collection{byID: make(map[int]Entry)}
}

// Replace swaps in the result of a full refresh.
func (c *Collection) Replace(entries []Entry, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = make([]int, 0, len(entries))
	c.byID = make(map[int]Entry, len(entries))
	for _, e := range entries {
		if _, dup := c.byID[e.ID]; !dup {
			c.order = append(c.order, e.ID)
		}
		c.byID[e.ID] = e
	}
	c.loaded = true
	c.refreshedAt = at
	c.lastErr = nil
}

// Fail records a failed listing; the collection is left empty.
func (c *Collection) Fail(err error, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = nil
	c.byID = make(map[int]Entry)
	c.loaded = true
	c.refreshedAt = at
	c.lastErr = err
}

// Upsert replaces the entry with the same id, appending it when unknown.
func (c *Collection) Upsert(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[e.ID]; !ok {
		c.order = append(c.order, e.ID)
	}
	c.byID[e.ID] = e
}

func (c *Collection) Remove(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Collection) Get(id int) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}

// Snapshot returns the entries in listing order.
func (c *Collection) Snapshot() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// State reports whether a refresh has completed, when, and the listing error if it failed.
func (c *Collection) State() (loaded bool, refreshedAt time.Time, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.refreshedAt, c.lastErr
}

// Registry holds one Collection per session.
type Registry struct {
	mu    sync.Mutex
	views map[string]*Collection
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*Collection)}
}

func (r *Registry) For(sessionID string) *Collection {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.views[sessionID]
	if !ok {
		c = NewCollection()
		r.views[sessionID] = c
	}
	return c
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, sessionID)
}
