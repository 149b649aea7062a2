package handlers

import (
	"context"
	"errors"
	"net/http"

	"newsdesk/auth"
	"newsdesk/metrics"
	"newsdesk/middleware"
	"newsdesk/models"

	"github.com/gin-gonic/gin"
)

// CredentialVerifier is satisfied by *auth.CredentialStore.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
}

type Auth struct {
	creds  CredentialVerifier
	tokens *auth.TokenService
	// secure marks the session cookie Secure (production, served over TLS).
	secure bool
}

func NewAuth(creds CredentialVerifier, tokens *auth.TokenService, secure bool) *Auth {
	return &Auth{creds: creds, tokens: tokens, secure: secure}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Auth) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordLogin("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Username and password are required"})
		return
	}

	user, err := h.creds.VerifyCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.RecordLogin("invalid")
		} else {
			metrics.RecordLogin("error")
		}
		respondError(c, err, "An error occurred during login")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		metrics.RecordLogin("error")
		respondError(c, err, "An error occurred during login")
		return
	}

	h.setSessionCookie(c, token, int(h.tokens.TTL().Seconds()))
	metrics.RecordLogin("success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    user.Summary(),
	})
}

// Logout clears the cookie. The token itself stays valid until it expires.
func (h *Auth) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (h *Auth) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.secure, true)
}
