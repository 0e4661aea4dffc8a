package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/CUknot/videocall_backend/config"
	"github.com/CUknot/videocall_backend/controllers"
	"github.com/CUknot/videocall_backend/database"
	"github.com/CUknot/videocall_backend/docs"
	"github.com/CUknot/videocall_backend/logger"
	"github.com/CUknot/videocall_backend/metrics"
	"github.com/CUknot/videocall_backend/middleware"
	"github.com/CUknot/videocall_backend/rooms"
	"github.com/CUknot/videocall_backend/websocket"
)

// @title           Video Call Signaling API
// @version         1.0
// @description     Room management and WebRTC signaling for peer-to-peer video calls
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if err := logger.Init(&cfg.Log, cfg.Mode); err != nil {
		logger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()

	iceServers, err := cfg.ICE.ICEServers()
	if err != nil {
		logger.Fatal("invalid ICE server configuration", zap.Error(err))
	}

	ctx := context.Background()
	backend, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open persistence", zap.String("backend", cfg.Persistence), zap.Error(err))
	}
	defer backend.Close()

	m := metrics.New()
	store := rooms.NewStore(backend.Rooms, rooms.WithTimeout(cfg.PersistTimeout), rooms.WithMetrics(m))
	if err := store.Load(ctx); err != nil {
		logger.Fatal("failed to load rooms", zap.Error(err))
	}

	hub := websocket.NewHub(store, m)

	var inviter controllers.Inviter = controllers.LogInviter{}
	if backend.Invites != nil {
		inviter = backend.Invites
	}
	rc := controllers.NewRoomController(store, hub, inviter, cfg.JoinURL, iceServers)

	// Set up Swagger info
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, rc, hub, m)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server running", zap.String("port", cfg.Port), zap.String("persistence", cfg.Persistence))
		logger.Info("swagger documentation available at http://localhost:" + cfg.Port + "/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Stop accepting upgrades first, then drain the signaling connections
	// before the deferred backend close.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.Error("signaling connections did not drain", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, rc *controllers.RoomController, hub *websocket.Hub, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/video-calls")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		api.POST("/rooms", rc.CreateRoom)
		api.GET("/rooms", rc.GetRooms)
		api.GET("/rooms/:roomId", rc.GetRoom)
		api.PATCH("/rooms/:roomId/settings", rc.UpdateSettings)
		api.DELETE("/rooms/:roomId", rc.EndRoom)
		api.POST("/rooms/:roomId/invite", rc.InviteToRoom)
		api.GET("/rooms/:roomId/invites", rc.GetInvitations)
		api.GET("/ice-servers", rc.GetICEServers)
	}

	// WebSocket route
	router.GET("/ws", hub.HandleConnection)

	return router
}

// requestLogger logs each request through zap once it completes.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.FullPath() == "/health" || c.FullPath() == "/metrics" {
			return
		}
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("clientIp", c.ClientIP()),
		)
	}
}
