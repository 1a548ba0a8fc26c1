package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/paisabank/paisabank-backend/internal/config"
	"github.com/paisabank/paisabank-backend/internal/handler"
	"github.com/paisabank/paisabank-backend/internal/middleware"
	"github.com/paisabank/paisabank-backend/internal/repository/postgres"
	"github.com/paisabank/paisabank-backend/internal/repository/storage"
	"github.com/paisabank/paisabank-backend/internal/service"
	"github.com/paisabank/paisabank-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)

	// Initialize notification hub
	hub := websocket.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo, accountRepo, cfg.JWTSecret, cfg.JWTTTL, cfg.OtpTTL, cfg.DefaultCurrency, !cfg.IsProduction())
	accountService := service.NewAccountService(accountRepo)
	transferService := service.NewTransferService(ledgerRepo, accountRepo)
	transferService.SetEventPublisher(hub)
	transactionService := service.NewTransactionService(transactionRepo, accountRepo)
	loanService := service.NewLoanService(loanRepo, accountRepo, ledgerRepo)
	loanService.SetEventPublisher(hub)

	// Document storage is optional; the rest of the API works without it
	var documentService *service.DocumentService
	if store, err := storage.NewS3DocumentStore(context.Background(), cfg.S3); err != nil {
		log.Warn().Err(err).Msg("Document storage unavailable, uploads disabled")
	} else {
		documentService = service.NewDocumentService(documentRepo, store)
		documentService.SetEventPublisher(hub)
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	otpLimiter := middleware.NewRateLimiter()
	defer otpLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	transferHandler := handler.NewTransferHandler(transferService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	loanHandler := handler.NewLoanHandler(loanService)
	documentHandler := handler.NewDocumentHandler(documentService)
	wsHandler := handler.NewWebSocketHandler(hub, websocket.NewTokenValidator(cfg.JWTSecret), cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, otpLimiter, authHandler, accountHandler, transferHandler, transactionHandler, loanHandler, documentHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
