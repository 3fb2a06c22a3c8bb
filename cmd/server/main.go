package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharespace-media/backend/internal/auth"
	"github.com/sharespace-media/backend/internal/cache"
	"github.com/sharespace-media/backend/internal/config"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/handlers"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/metrics"
	"github.com/sharespace-media/backend/internal/middleware"
	"github.com/sharespace-media/backend/internal/sharelink"
	"github.com/sharespace-media/backend/internal/storage"
	"github.com/sharespace-media/backend/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("Share Space backend starting",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	// Initialize database
	if err := database.Initialize(cfg.DSN(), !cfg.IsProduction()); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional: rate limiting degrades gracefully without it,
	// and the redis share-link backend refuses to start below
	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}
	jwtSecret := []byte(cfg.JWTSecret)

	authService := auth.NewService(jwtSecret, cfg.JWTExpiry, cfg.BaseURL,
		cfg.GoogleClientID, cfg.GoogleClientSecret)

	// Blob storage
	var blobs storage.BlobStore
	var localStore *storage.LocalStore
	switch cfg.StorageBackend {
	case "s3":
		s3Store, err := storage.NewS3Store(cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
		if err != nil {
			logger.Log.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		if err := s3Store.CheckBucketAccess(context.Background()); err != nil {
			logger.Warn("S3 bucket access check failed", zap.Error(err))
		}
		blobs = s3Store
	default:
		localStore, err = storage.NewLocalStore(cfg.UploadDir, cfg.BaseURL)
		if err != nil {
			logger.Log.Fatal("Failed to initialize local storage", zap.Error(err))
		}
		blobs = localStore
	}

	// One-time share links
	var linkStore sharelink.Store
	switch cfg.ShareLinkBackend {
	case "memory":
		linkStore = sharelink.NewMemoryStore()
	case "redis":
		if redisClient == nil {
			logger.Log.Fatal("SHARE_LINK_BACKEND=redis requires a reachable Redis")
		}
		linkStore = sharelink.NewRedisStore(redisClient, cfg.ShareLinkTTL)
	default:
		linkStore = sharelink.NewGormStore(database.DB)
	}

	linkService := sharelink.NewService(linkStore, sharelink.Options{
		BaseURL:         cfg.BaseURL,
		TTL:             cfg.ShareLinkTTL,
		MaxPayloadBytes: cfg.ShareLinkMaxPayload,
	})

	sweeper := sharelink.NewSweeper(linkService, cfg.ShareLinkSweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// WebSocket hub for chat
	wsHub := websocket.NewHub()
	wsHandler := websocket.NewHandler(wsHub, jwtSecret)
	wsHandler.RegisterDefaultHandlers()
	go wsHub.Run()

	metrics.Initialize()

	h := handlers.NewHandlers(authService, blobs, linkService, cfg.MaxUploadSize)
	h.SetWebSocketHandler(wsHandler)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	// Locally stored uploads are served straight from disk; S3 serves its own
	if localStore != nil {
		r.Static("/files", localStore.Root())
	}

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		checks := gin.H{"database": "ok"}
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			checks["database"] = "unreachable"
		}
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(c.Request.Context()); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
				checks["redis"] = "unreachable"
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "sharespace-backend",
			"checks":    checks,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := authService.Middleware()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/google", h.GoogleLogin)
			authGroup.GET("/google/callback", h.GoogleCallback)
			authGroup.GET("/me", authRequired, h.Me)
		}

		// One-time share links. Issue requires auth; recipients
		// consume anonymously.
		links := api.Group("/secure-links")
		{
			links.POST("", authRequired, h.CreateShareLink)
			if redisClient != nil {
				links.GET("/:id",
					middleware.RedisRateLimitMiddleware("secure-links", cfg.ConsumeRateLimit, cfg.ConsumeRateWindow),
					h.ConsumeShareLink)
			} else {
				links.GET("/:id", h.ConsumeShareLink)
			}
		}

		files := api.Group("/files")
		{
			files.Use(authRequired)
			files.POST("", h.UploadFile)
			files.DELETE("", h.DeleteFile)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", h.ListPosts)
			posts.GET("/:id", h.GetPost)

			posts.POST("", authRequired, h.CreatePost)
			posts.PATCH("/:id", authRequired, h.UpdatePost)
			posts.DELETE("/:id", authRequired, h.DeletePost)

			posts.POST("/:id/bookmark", authRequired, h.BookmarkPost)
			posts.DELETE("/:id/bookmark", authRequired, h.UnbookmarkPost)
			posts.GET("/:id/bookmarked", authRequired, h.IsPostBookmarked)
			posts.POST("/:id/save", authRequired, h.SavePost)
			posts.DELETE("/:id/save", authRequired, h.UnsavePost)
			posts.GET("/:id/saved", authRequired, h.IsPostSaved)
		}

		api.GET("/search", h.SearchPosts)

		users := api.Group("/users")
		{
			users.GET("/me/bookmarks", authRequired, h.GetBookmarks)
			users.GET("/me/saved", authRequired, h.GetSavedPosts)
			users.PATCH("/me", authRequired, h.UpdateProfile)
			users.GET("/:username", h.GetUserProfile)
		}

		conversations := api.Group("/conversations")
		{
			conversations.Use(authRequired)
			conversations.POST("", h.StartConversation)
			conversations.GET("", h.ListConversations)
			conversations.POST("/:id/messages", h.SendMessage)
			conversations.GET("/:id/messages", h.GetMessages)
		}

		ws := api.Group("/ws")
		{
			// Auth via query param ?token=... or Authorization header
			ws.GET("", wsHandler.HandleWebSocket)
			ws.GET("/metrics", authRequired, wsHandler.HandleMetrics)
			ws.POST("/online", authRequired, wsHandler.HandleOnlineStatus)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := wsHandler.Shutdown(ctx); err != nil {
		logger.Warn("WebSocket shutdown incomplete", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}
