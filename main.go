package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/auth"
	"newsdesk/config"
	"newsdesk/database"
	"newsdesk/media"
	"newsdesk/notify"
	"newsdesk/posts"
	"newsdesk/repository"
	"newsdesk/routes"
	"newsdesk/websocket"

	"github.com/gin-gonic/gin"
)

type stores struct {
	users auth.UserStore
	posts posts.Store
	subs  notify.SubscriptionStore
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func main() {
	cfg := config.Load()
	slog.SetDefault(cfg.NewLogger())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		slog.Warn("JWT_SECRET not set, using the development secret")
	}

	slog.Info("starting newsdesk", "env", cfg.Env, "store", cfg.Store)

	st, err := openStores(cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	creds, err := auth.NewCredentialStore(st.users, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		slog.Error("credential store", "error", err)
		os.Exit(1)
	}
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 15*time.Second)
	err = creds.EnsureDefaultIdentity(bootCtx)
	bootCancel()
	if err != nil {
		slog.Error("bootstrap admin identity", "error", err)
		os.Exit(1)
	}

	var resolver media.Resolver = media.Disabled{}
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.MediaFolder)
		if err != nil {
			slog.Error("cloudinary configuration", "error", err)
			os.Exit(1)
		}
		resolver = cld
	} else {
		slog.Warn("CLOUDINARY_URL not set, image uploads are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	notifier := notify.New(st.subs, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	if !notifier.Enabled() {
		slog.Info("VAPID keys not set, push notifications are disabled")
	}

	postSvc := posts.NewService(st.posts, resolver,
		posts.WithPublisher(hub),
		posts.WithPublisher(notifier),
	)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := routes.SetupRouter(routes.Deps{
		Credentials:    creds,
		Tokens:         auth.NewTokenService([]byte(cfg.JWTSecret), cfg.SessionTTL),
		Posts:          postSvc,
		Hub:            hub,
		Notifier:       notifier,
		Ping:           st.ping,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.Production(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	notifier.Wait()
	if err := st.close(shutdownCtx); err != nil {
		slog.Warn("closing store", "error", err)
	}

	slog.Info("server stopped")
}

func openStores(cfg config.Config) (*stores, error) {
	if cfg.Store == "memory" {
		slog.Warn("using in-memory store, data is lost on restart")
		return &stores{
			users: repository.NewMemoryUsers(),
			posts: repository.NewMemoryPosts(),
			subs:  repository.NewMemorySubscriptions(),
			close: func(context.Context) error { return nil },
		}, nil
	}

	db := database.New(cfg.MongoURI, cfg.MongoDatabase)

	var err error
	for i := 1; i <= 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		err = db.Connect(ctx)
		cancel()
		if err == nil {
			break
		}
		slog.Warn("mongodb connection attempt failed", "attempt", i, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := db.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	return &stores{
		users: repository.NewUsers(db),
		posts: repository.NewPosts(db),
		subs:  repository.NewSubscriptions(db),
		ping:  db.Ping,
		close: db.Disconnect,
	}, nil
}
