package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

// SessionGate lets a request through only when the session holds a token.
// The token is not checked against the backend here; an expired one surfaces
// as an inline error on the first backend call. Anonymous page loads get the
// login form in place of the page, anything else is sent back to "/".
func SessionGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.From(c)
		if s != nil && s.Authenticated() {
			c.Next()
			return
		}

		switch {
		case c.IsWebsocket():
			c.AbortWithStatus(http.StatusUnauthorized)
		case c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead:
			page := views.NewPage(s, "Login", "")
			page.Data = views.AuthData{}
			c.HTML(http.StatusOK, "login", page)
			c.Abort()
		default:
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
		}
	}
}
