package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"botstats/internal/services"
)

// AdminAuthMiddleware gates the admin surface behind the shared
// secret, presented as a bearer token. Every failure answers the same
// 401 with no detail about what was wrong; when no password is
// configured the whole surface is dark.
func AdminAuthMiddleware(auth *services.AdminAuth, seclog *SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !auth.Check(token) {
			seclog.LogFailedAuth(c.ClientIP(), "admin endpoint "+c.FullPath())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
