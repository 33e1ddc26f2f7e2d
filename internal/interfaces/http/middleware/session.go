// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront/internal/config"
)

const sessionIDKey = "session_id"

// Session attaches a shopper session id to every request, issuing a cookie
// when the browser does not present one. The id keys the cart and checkout
// state, so anonymous shoppers keep their cart between requests.
func Session(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.Session.CookieName, id, int(cfg.Session.TTL.Seconds()), "/", "", cfg.Session.Secure, true)
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// GetSessionIDFromContext returns the session id set by Session
func GetSessionIDFromContext(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
