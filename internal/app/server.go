// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ecowas_fisheries_backend/internal/audit"
	"ecowas_fisheries_backend/internal/auth"
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/filestorage"
	"ecowas_fisheries_backend/internal/indicator"
	"ecowas_fisheries_backend/internal/jobs"
	"ecowas_fisheries_backend/internal/middleware"
	"ecowas_fisheries_backend/internal/notification"
	"ecowas_fisheries_backend/internal/platform/metrics"
	"ecowas_fisheries_backend/internal/push"
	"ecowas_fisheries_backend/internal/shared"
	"ecowas_fisheries_backend/internal/upload"
	"ecowas_fisheries_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Upload       *upload.Handler
	Indicator    *indicator.Handler
	Notification *notification.Handler
	Audit        *audit.Handler
	Push         *push.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Jobs
	pendingReviewJob *jobs.PendingReviewJob
}

// Models lists every table the server owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&user.Profile{},
		&upload.Record{},
		&upload.DownloadLogEntry{},
		&notification.Record{},
		&notification.State{},
		&audit.Entry{},
		&indicator.Record{},
	}
}

// NewServer creates a new instance of our application server.
// limiter may be nil, in which case no rate limiting is applied.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	resolver shared.SessionResolver,
	handlers Handlers,
	limiter middleware.Limiter,
	store filestorage.ObjectStore,
	pendingReviewJob *jobs.PendingReviewJob,
) *Server {
	gin.SetMode(cfg.GinMode)
	common.RegisterValidators()
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.Auth(resolver, logger.Named("AuthMiddleware"))
	countryMW := middleware.CountryGuard(logger.Named("CountryGuard"))
	adminMW := middleware.AdminGuard(logger.Named("AdminGuard"))

	var authLimiters, relayLimiters []gin.HandlerFunc
	if limiter != nil {
		authLimiters = append(authLimiters, middleware.RateLimit(limiter, "auth"))
		relayLimiters = append(relayLimiters, middleware.RateLimit(limiter, "relay"))
	} else {
		logger.Info("Rate limiting is disabled.")
	}

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "ECOWAS Fisheries API is healthy!"})
	})
	router.GET("/metrics", metrics.Handler())

	if local, ok := store.(*filestorage.LocalStore); ok {
		router.Static(filestorage.LocalURLPrefix, local.Root())
	}

	v1 := router.Group("/api/v1")
	handlers.Auth.RegisterRoutes(v1, authMW, authLimiters...)

	me := v1.Group("", authMW)
	handlers.User.RegisterRoutes(me)

	countryScoped := v1.Group("/countries/:"+common.CountryParam, authMW, countryMW)
	handlers.Upload.RegisterRoutes(countryScoped)
	handlers.Indicator.RegisterRoutes(countryScoped)
	handlers.Notification.RegisterRoutes(countryScoped)

	admin := v1.Group("/admin", authMW, adminMW)
	handlers.User.RegisterAdminRoutes(admin)
	handlers.Upload.RegisterAdminRoutes(admin)
	handlers.Indicator.RegisterAdminRoutes(admin)
	handlers.Notification.RegisterAdminRoutes(admin)
	handlers.Audit.RegisterAdminRoutes(admin)

	handlers.Push.RegisterRoutes(router, append([]gin.HandlerFunc{authMW, adminMW}, relayLimiters...)...)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:       httpServer,
		router:           router,
		cfg:              cfg,
		logger:           logger,
		pendingReviewJob: pendingReviewJob,
	}
}

// Router exposes the engine for in-process tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.pendingReviewJob != nil {
		if err := s.pendingReviewJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start pending review job", zap.Error(err))
		}
	} else {
		s.logger.Info("Pending review job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the scheduler first so no digest starts mid-drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.pendingReviewJob != nil {
		s.pendingReviewJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
