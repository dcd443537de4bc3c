package main

//go:generate swag init -g cmd/api/main.go -o ../../api/swagger --parseInternal -d ../..

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	_ "github.com/soonland/nexus-gaming/api/swagger" // swagger docs
	"github.com/soonland/nexus-gaming/internal/auth"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/config"
	"github.com/soonland/nexus-gaming/internal/database"
	"github.com/soonland/nexus-gaming/internal/handler"
	"github.com/soonland/nexus-gaming/internal/logging"
	"github.com/soonland/nexus-gaming/internal/middleware"
	"github.com/soonland/nexus-gaming/internal/repository"
	"github.com/soonland/nexus-gaming/internal/service"
	"github.com/soonland/nexus-gaming/internal/websocket"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Nexus Gaming API
// @version         1.0
// @description     Editorial back office and public reading API for Nexus Gaming.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Configuration failed: %v", err)
	}
	logging.Configure(cfg.LogLevel, cfg.LogFormat, cfg.AppEnv)

	db, err := database.NewConnection(cfg.DSN(), !cfg.IsProduction())
	if err != nil {
		logrus.Fatalf("Database connection failed: %v", err)
	}
	logrus.Info("Connected to PostgreSQL successfully.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.CORSOrigins)
	go wsHub.Run(ctx)

	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.AccessTokenTTL)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, txManager, tokens, cfg.RefreshTokenTTL)
	userService := service.NewUserService(userRepo, tokenRepo, auditRepo, txManager, cfg.AccountCacheTTL)
	notificationService := service.NewNotificationService(repository.NewNotificationRepository(db), userRepo, auditRepo, txManager, wsHub)
	articleService := service.NewArticleService(repository.NewArticleRepository(db), repository.NewApprovalRepository(db),
		userRepo, auditRepo, txManager, notificationService)
	announcementService := service.NewAnnouncementService(repository.NewAnnouncementRepository(db), auditRepo, txManager)
	catalogService := service.NewCatalogService(repository.NewGameRepository(db), repository.NewPlatformRepository(db),
		repository.NewCompanyRepository(db), auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(repository.NewStatisticsRepository(db))

	requireAuth := middleware.RequireAuth(tokens, userService)
	cookies := handler.CookieSettings{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Secure:     cfg.SecureCookies(),
	}

	// Set up Gin Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logging.RequestLogger(middleware.CurrentPrincipal), bizerror.ErrorHandling())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// API Routing
	api := router.Group("")
	handler.NewAuthHandler(authService, middleware.NewRateLimiter(cfg.LoginRatePerMinute), cookies).RegisterRoutes(api, requireAuth)
	handler.NewUserHandler(userService).RegisterRoutes(api, requireAuth)
	handler.NewArticleHandler(articleService).RegisterRoutes(api, requireAuth)
	handler.NewAnnouncementHandler(announcementService).RegisterRoutes(api, requireAuth)
	handler.NewNotificationHandler(notificationService, wsHub, tokens, userService).RegisterRoutes(api, requireAuth)
	handler.NewCatalogHandler(catalogService).RegisterRoutes(api, requireAuth)
	handler.NewAuditHandler(auditService).RegisterRoutes(api, requireAuth)
	handler.NewStatisticsHandler(statisticsService).RegisterRoutes(api, requireAuth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Graceful shutdown failed: %v", err)
	}
}
