package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// gate resolves the guard decision from the session. While the session is
// still loading no decision is made.
func gate(sessions sessionStore, needAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := sessions.State()
		switch {
		case st.Loading:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "session loading"})
		case !st.IsAuthenticated():
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		case needAdmin && !st.IsAdmin():
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin access required"})
		default:
			c.Next()
		}
	}
}

func requireAuth(sessions sessionStore) gin.HandlerFunc {
	return gate(sessions, false)
}

func requireAdmin(sessions sessionStore) gin.HandlerFunc {
	return gate(sessions, true)
}
