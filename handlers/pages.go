package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const loginPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Newsdesk admin login</title></head>
<body>
<form id="login">
  <input name="username" placeholder="Username" autocomplete="username" required>
  <input name="password" type="password" placeholder="Password" autocomplete="current-password" required>
  <button type="submit">Sign in</button>
  <p id="error"></p>
</form>
<script>
document.getElementById('login').addEventListener('submit', async (e) => {
  e.preventDefault();
  const form = new FormData(e.target);
  const res = await fetch('/api/auth/login', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({username: form.get('username'), password: form.get('password')}),
  });
  const body = await res.json();
  if (body.success) { window.location.href = '/admin'; return; }
  document.getElementById('error').textContent = body.message;
});
</script>
</body>
</html>`

const adminPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Newsdesk admin</title></head>
<body>
<h1>Newsdesk</h1>
<p>Signed in. Posts are managed through <code>/admin/api/posts</code>.</p>
<button onclick="fetch('/api/auth/logout',{method:'POST'}).then(()=>location.href='/login')">Sign out</button>
</body>
</html>`

func LoginPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(loginPage))
}

// AdminDashboard is only reachable through the admin guard.
func AdminDashboard(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(adminPage))
}

// Health reports 503 when ping fails. A nil ping (in-memory store) is always healthy.
func Health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
