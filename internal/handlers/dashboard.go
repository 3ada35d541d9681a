package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printhub/console/internal/backend"
	"printhub/console/internal/fleet"
	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

const (
	recentAlerts  = 10
	historyAlerts = 20
)

// Dashboard runs a full refresh on every load, the same pass the background
// job repeats while the page stays open.
func (h HandlerSet) Dashboard(c *gin.Context) {
	s := session.From(c)
	owner := s.Owner()

	data := views.DashboardData{
		Threshold:    h.monitor.Threshold(),
		RefreshEvery: h.cfg.Fleet.RefreshInterval,
	}

	entries, err := h.monitor.Cycle(c.Request.Context(), owner, h.caller(c))
	if err != nil {
		data.ListError = backend.UserMessage(err, "Could not load printers")
	}
	_, data.RefreshedAt, _ = h.monitor.Collection(owner).State()
	data.Entries = entries
	data.Summary = fleet.Summarize(entries, data.Threshold)
	data.Recent = h.dispatcher.Feed().Recent(owner.SessionID, recentAlerts)

	if h.history != nil {
		alerts, err := h.history.ListByUser(c.Request.Context(), owner.Username, historyAlerts)
		if err != nil {
			h.log.Warn().Err(err).Msg("load alert history failed")
		}
		data.History = alerts
	}

	p := h.page(c, "Dashboard", "dashboard")
	p.Data = data
	c.HTML(http.StatusOK, "dashboard", p)
}
