package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"newsdesk/auth"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the signed session token issued at login.
const SessionCookie = "token"

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/login"

// AdminGuard admits a request only when it carries a session cookie whose token
// verifies. Anything else is redirected to the login page and the chain is aborted.
// Nothing is placed on the context for downstream handlers.
func AdminGuard(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		if _, err := tokens.Verify(raw); err != nil {
			reason := "invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				reason = "expired"
			}
			slog.Debug("admin guard rejected session", "reason", reason, "path", c.Request.URL.Path, "request_id", RequestID(c))
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}

		c.Next()
	}
}
