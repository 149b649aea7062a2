package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdesk/auth"
	"newsdesk/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func guardedRouter(tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(RequestLog())
	admin := r.Group("/admin", AdminGuard(tokens))
	admin.GET("", func(c *gin.Context) { c.String(http.StatusOK, "dashboard") })
	admin.GET("/api/posts", func(c *gin.Context) {
		_, exists := c.Get("userId")
		c.JSON(http.StatusOK, gin.H{"injected": exists})
	})
	return r
}

func adminUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "admin", Role: models.RoleAdmin}
}

func TestAdminGuard(t *testing.T) {
	secret := []byte("guard-secret")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens := auth.NewTokenServiceWithClock(secret, time.Hour, func() time.Time { return now })

	valid, err := tokens.Issue(adminUser())
	require.NoError(t, err)

	expired, err := auth.NewTokenServiceWithClock(secret, time.Hour, func() time.Time { return now.Add(-2 * time.Hour) }).Issue(adminUser())
	require.NoError(t, err)

	foreign, err := auth.NewTokenService([]byte("other-secret"), time.Hour).Issue(adminUser())
	require.NoError(t, err)

	tests := []struct {
		name     string
		cookie   string
		path     string
		wantCode int
	}{
		{"no cookie", "", "/admin", http.StatusFound},
		{"garbage", "not-a-token", "/admin", http.StatusFound},
		{"expired", expired, "/admin", http.StatusFound},
		{"other secret", foreign, "/admin/api/posts", http.StatusFound},
		{"valid dashboard", valid, "/admin", http.StatusOK},
		{"valid nested", valid, "/admin/api/posts", http.StatusOK},
	}

	r := guardedRouter(tokens)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantCode == http.StatusFound {
				assert.Equal(t, LoginPath, w.Header().Get("Location"))
			}
		})
	}
}

func TestAdminGuard_InjectsNothing(t *testing.T) {
	tokens := auth.NewTokenService([]byte("s"), time.Hour)
	valid, err := tokens.Issue(adminUser())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: valid})
	w := httptest.NewRecorder()
	guardedRouter(tokens).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"injected":false}`, w.Body.String())
}

func TestRequestLog_AssignsID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLog())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	for _, hsts := range []bool{false, true} {
		r := gin.New()
		r.Use(SecurityHeaders(hsts))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, hsts, w.Header().Get("Strict-Transport-Security") != "")
	}
}

func TestMaxBody(t *testing.T) {
	r := gin.New()
	r.Use(MaxBody(10))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 2<<20))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
}
