package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const (
	sessionCookie = "sid"
	sessionCtxKey = "session_id"

	// Cookie lifetime; the server-side state expires on its own TTL.
	sessionMaxAge = 30 * 24 * 3600
)

// Session assigns every browser a stable session ID via the sid cookie,
// minting one on first contact. Handlers read it with SessionID.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(sessionCookie)
		if err != nil || sid == "" {
			id, err := uuid.NewV4()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
				return
			}
			sid = id.String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sid, sessionMaxAge, "/", "", false, true)
		}
		c.Set(sessionCtxKey, sid)
		c.Next()
	}
}

// SessionID returns the request's session ID. Empty only if the Session
// middleware is not installed.
func SessionID(c *gin.Context) string {
	sid, _ := c.Get(sessionCtxKey)
	s, _ := sid.(string)
	return s
}
