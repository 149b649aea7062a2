package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"newsdesk/auth"
	"newsdesk/handlers"
	"newsdesk/metrics"
	"newsdesk/middleware"
	"newsdesk/notify"
	"newsdesk/posts"
	"newsdesk/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs. Ping may be nil.
type Deps struct {
	Credentials handlers.CredentialVerifier
	Tokens      *auth.TokenService
	Posts       *posts.Service
	Hub         *websocket.Hub
	Notifier    *notify.Notifier
	Ping        func(ctx context.Context) error

	AllowedOrigins []string
	MaxUploadBytes int64
	SecureCookies  bool
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog())
	router.Use(middleware.SecurityHeaders(d.SecureCookies))

	if len(d.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authH := handlers.NewAuth(d.Credentials, d.Tokens, d.SecureCookies)
	postH := handlers.NewPosts(d.Posts, d.MaxUploadBytes)
	pushH := handlers.NewPush(d.Notifier)

	router.GET("/health", handlers.Health(d.Ping))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.GET("/login", handlers.LoginPage)
	router.GET("/ws", gin.WrapF(d.Hub.Handler()))

	// Public routes (no auth required)
	api := router.Group("/api")
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout)
	api.GET("/posts", postH.List)
	api.GET("/posts/:id", postH.Get)
	api.GET("/push/vapid-public-key", pushH.VAPIDPublicKey)
	api.POST("/push/subscribe", pushH.Subscribe)

	// Everything under /admin requires a valid session cookie.
	guard := middleware.AdminGuard(d.Tokens)
	admin := router.Group("/admin")
	admin.Use(guard)
	admin.GET("", handlers.AdminDashboard)
	admin.GET("/api/posts", postH.List)

	writes := admin.Group("/api/posts", middleware.MaxBody(d.MaxUploadBytes))
	writes.POST("", postH.Create)
	writes.PUT("/:id", postH.Update)
	writes.DELETE("/:id", postH.Delete)

	router.NoRoute(func(c *gin.Context) {
		// Unknown admin paths are still guarded so they reveal nothing.
		if strings.HasPrefix(c.Request.URL.Path, "/admin") {
			guard(c)
			if c.IsAborted() {
				return
			}
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api") || strings.HasPrefix(c.Request.URL.Path, "/admin/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})

	return router
}
