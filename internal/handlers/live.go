package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"printhub/console/internal/models"
	"printhub/console/internal/notify"
	"printhub/console/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// LiveNotifications is the dashboard's live channel. While at least one is
// open for a session, the fleet is refreshed in the background on the
// configured interval and toasts are pushed down the socket.
func (h HandlerSet) LiveNotifications(c *gin.Context) {
	s := session.From(c)
	owner := s.Owner()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.scheduler.Mount(owner.SessionID, h.cfg.Fleet.RefreshInterval, h.refreshJob(owner))
	hub := h.dispatcher.Hub()
	sub, first := hub.Subscribe(owner.SessionID)
	if first {
		h.log.Debug().Str("user", owner.Username).Msg("live view opened")
	}
	defer func() {
		hub.Unsubscribe(sub)
		h.scheduler.Release(owner.SessionID)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Debug().Err(err).Msg("websocket closed")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case toast, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := conn.WriteJSON(toast); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// refreshJob is the background pass for one session. It reads the token from
// the session store on every request, so a logout stops it from
// authenticating even before it is unmounted.
func (h HandlerSet) refreshJob(owner models.Owner) func() {
	api := h.backend.With(h.sessions.StoredToken(owner.SessionID))
	timeout := h.cfg.Fleet.RefreshInterval
	if timeout <= 0 || timeout > 2*time.Minute {
		timeout = 2 * time.Minute
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := h.monitor.Cycle(ctx, owner, api); err != nil {
			return
		}
		h.dispatcher.Hub().Send(owner.SessionID, []notify.Toast{notify.Refreshed(time.Now())})
	}
}

// Unmount is registered as a session end hook.
func (h HandlerSet) Unmount(owner models.Owner) {
	h.scheduler.Unmount(owner.SessionID)
	h.monitor.Forget(owner)
	h.dispatcher.Forget(owner)
}
