package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/config"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/database"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/handlers"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/logging"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/middleware"
	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/services"
)

const authAttemptsPerMinute = 10

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}

	logger.Info("Starting location sharing server...")

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(redisDB.Client, userService)
	followService := services.NewFollowService(dbAdapter)
	blockService := services.NewBlockService(dbAdapter)
	sharingService := services.NewSharingService(dbAdapter)
	locationService := services.NewLocationService(dbAdapter, redisDB.Client, cfg.Location, logger)
	friendMapService := services.NewFriendMapService(dbAdapter, cfg.Map.QueryTimeout, logger)
	accountService := services.NewAccountService(dbAdapter, userService, followService, sharingService,
		locationService, authService, logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, cfg.Server.Secure)
	followHandler := handlers.NewFollowHandler(followService)
	blockHandler := handlers.NewBlockHandler(blockService)
	sharingHandler := handlers.NewSharingHandler(sharingService)
	locationHandler := handlers.NewLocationHandler(locationService)
	friendMapHandler := handlers.NewFriendMapHandler(friendMapService)
	accountHandler := handlers.NewAccountHandler(accountService, cfg.Server.Secure)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.Server.Secure)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	cacheControl := middleware.NewCacheControl()
	compress := middleware.NewCompress()
	requestLogger := middleware.NewRequestLogger(logger)

	captureLimiter := middleware.NewRateLimiter(redisDB.Client, cfg.Location.RateLimit, time.Minute, "ratelimit:capture:",
		func(r *http.Request) string {
			if user := handlers.GetUserFromContext(r.Context()); user != nil {
				return user.ID.String()
			}
			return ""
		}, false)
	authLimiter := middleware.NewRateLimiter(redisDB.Client, authAttemptsPerMinute, time.Minute, "ratelimit:auth:", nil, true)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(h)
	}
	capture := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(captureLimiter.Middleware(h))
	}

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	mux.HandleFunc("GET /api/csrf", csrfMiddleware.GetToken)

	// Auth
	mux.Handle("POST /api/auth/register", authLimiter.Middleware(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(authHandler.Me))

	// Follow graph
	mux.Handle("GET /api/users/search", requireAuth(followHandler.Search))
	mux.Handle("POST /api/follows", requireAuth(followHandler.Follow))
	mux.Handle("DELETE /api/follows/{id}", requireAuth(followHandler.Unfollow))
	mux.Handle("GET /api/followers", requireAuth(followHandler.Followers))
	mux.Handle("GET /api/following", requireAuth(followHandler.Following))

	// Blocks
	mux.Handle("POST /api/blocks", requireAuth(blockHandler.Block))
	mux.Handle("DELETE /api/blocks/{id}", requireAuth(blockHandler.Unblock))
	mux.Handle("GET /api/blocks", requireAuth(blockHandler.List))

	// Sharing preferences
	mux.Handle("GET /api/sharing", requireAuth(sharingHandler.Get))
	mux.Handle("PUT /api/sharing/enabled", requireAuth(sharingHandler.SetEnabled))
	mux.Handle("PUT /api/sharing/all-followers", requireAuth(sharingHandler.SetVisibleToAllFollowers))
	mux.Handle("PUT /api/sharing/shares/{id}", requireAuth(sharingHandler.GrantShare))
	mux.Handle("DELETE /api/sharing/shares/{id}", requireAuth(sharingHandler.RevokeShare))
	mux.Handle("GET /api/sharing/followers", requireAuth(sharingHandler.Followers))

	// Own location
	mux.Handle("POST /api/location", capture(locationHandler.Capture))
	mux.Handle("GET /api/location", requireAuth(locationHandler.Get))
	mux.Handle("DELETE /api/location", requireAuth(locationHandler.Clear))
	mux.Handle("PUT /api/location/tracking", capture(locationHandler.SetTracking))

	// Friend map
	mux.Handle("GET /api/map/friends", requireAuth(friendMapHandler.List))
	mux.Handle("GET /api/map/friends.geojson", requireAuth(friendMapHandler.GeoJSON))
	mux.Handle("GET /api/map/friends/{id}", requireAuth(friendMapHandler.Detail))

	// Account
	mux.Handle("GET /api/account/export", requireAuth(accountHandler.Export))
	mux.Handle("GET /api/account/activity", requireAuth(accountHandler.Activity))
	mux.Handle("DELETE /api/account", requireAuth(accountHandler.Delete))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = csrfMiddleware.Protect(handler)
	handler = cacheControl.Apply(handler)
	handler = compress.Apply(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Location.CaptureTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
