package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const contextKey = "console_session"

// Middleware loads the session for every request.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Load(c.Request.Context(), c.Request)
		if err != nil {
			m.log.Error().Err(err).Msg("load session failed")
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Set(contextKey, s)
		c.Next()
	}
}

// From returns the request's session. It is never nil behind Middleware.
func From(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return &Session{}
}
