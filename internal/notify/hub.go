package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

const subscriberBuffer = 16

// Subscription is one open dashboard socket.
type Subscription struct {
	id      uint64
	session string
	C       chan Toast
}

// Hub tracks live dashboard sockets per session. A session may have several
// tabs open; each gets every toast.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]*Subscription
	log    zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[uint64]*Subscription),
		log:  log,
	}
}

// Subscribe registers a socket and reports whether it is the first one open
// for the session.
func (h *Hub) Subscribe(sessionID string) (*Subscription, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{id: h.nextID, session: sessionID, C: make(chan Toast, subscriberBuffer)}
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[uint64]*Subscription)
		h.subs[sessionID] = set
	}
	set[sub.id] = sub
	return sub, len(set) == 1
}

// Unsubscribe removes a socket and reports whether it was the last one for
// the session. Unsubscribing twice is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.session]
	if !ok {
		return false
	}
	if _, ok := set[sub.id]; !ok {
		return false
	}
	delete(set, sub.id)
	close(sub.C)
	if len(set) == 0 {
		delete(h.subs, sub.session)
		return true
	}
	return false
}

// Send delivers toasts to every socket of the session without blocking.
func (h *Hub) Send(sessionID string, toasts []Toast) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, sub := range h.subs[sessionID] {
		for _, t := range toasts {
			select {
			case sub.C <- t:
				delivered++
			default:
				h.log.Warn().Str("session", sessionID).Msg("toast dropped, subscriber buffer full")
			}
		}
	}
	return delivered
}

// Close ends every socket of a session.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs[sessionID] {
		close(sub.C)
	}
	delete(h.subs, sessionID)
}

func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}
