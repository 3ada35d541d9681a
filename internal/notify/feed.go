package notify

import "sync"

// Feed keeps the most recent toasts per session, newest first.
type Feed struct {
	mu    sync.RWMutex
	size  int
	items map[string][]Toast
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size, items: make(map[string][]Toast)}
}

func (f *Feed) Add(sessionID string, toasts []Toast) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.items[sessionID]
	for _, t := range toasts {
		list = append([]Toast{t}, list...)
	}
	if len(list) > f.size {
		list = list[:f.size]
	}
	f.items[sessionID] = list
}

func (f *Feed) Recent(sessionID string, limit int) []Toast {
	f.mu.RLock()
	defer f.mu.RUnlock()

	list := f.items[sessionID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]Toast, len(list))
	copy(out, list)
	return out
}

func (f *Feed) Drop(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, sessionID)
}
