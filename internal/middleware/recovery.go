package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("error", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", RequestIDFrom(c)).
					Msg("panic recovered")

				page := views.NewPage(session.From(c), "Something went wrong", "")
				page.Error = "Internal server error. Request " + RequestIDFrom(c)
				c.HTML(http.StatusInternalServerError, "error", page)
				c.Abort()
			}
		}()
		c.Next()
	}
}
