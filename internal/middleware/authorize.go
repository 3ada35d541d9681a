package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printhub/console/internal/models"
	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

// RequireRoles checks the role held in the session. It is a UI gate; the
// backend enforces the same rule on its side.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		s := session.From(c)
		if s == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if _, ok := roleSet[s.Role]; !ok {
			page := views.NewPage(s, "Forbidden", "settings")
			page.Error = "Only administrators can manage users."
			c.HTML(http.StatusForbidden, "error", page)
			c.Abort()
			return
		}

		c.Next()
	}
}
