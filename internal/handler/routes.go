package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/paisabank/paisabank-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, otpLimiter *middleware.RateLimiter, authHandler *AuthHandler, accountHandler *AccountHandler, transferHandler *TransferHandler, transactionHandler *TransactionHandler, loanHandler *LoanHandler, documentHandler *DocumentHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public, OTP issuance rate limited per client IP)
	auth := api.Group("/auth")
	auth.POST("/otp", authHandler.RequestOtp, middleware.RateLimitMiddleware(otpLimiter, otpRequestKey))
	auth.POST("/verify", authHandler.VerifyOtp)
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate())

	// Account routes (protected)
	accounts := api.Group("/accounts")
	accounts.Use(authMiddleware.Authenticate())
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)

	// Transfer routes (protected)
	transfers := api.Group("/transfers")
	transfers.Use(authMiddleware.Authenticate())
	transfers.POST("", transferHandler.CreateTransfer)

	// Loan routes (protected)
	loans := api.Group("/loans")
	loans.Use(authMiddleware.Authenticate())
	loans.POST("", loanHandler.ApplyLoan)
	loans.POST("/preview", loanHandler.PreviewLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.POST("/:id/payments", loanHandler.PayInstallment)

	// Document routes (protected)
	documents := api.Group("/documents")
	documents.Use(authMiddleware.Authenticate())
	documents.POST("", documentHandler.UploadDocument)
	documents.GET("", documentHandler.GetDocuments)

	// Admin routes (protected, admin role required)
	admin := api.Group("/admin")
	admin.Use(authMiddleware.Authenticate(), middleware.RequireAdmin())
	admin.GET("/loans", loanHandler.GetPendingLoans)
	admin.POST("/loans/:id/decision", loanHandler.DecideLoan)
	admin.POST("/documents/:id/review", documentHandler.ReviewDocument)

	// WebSocket endpoint (token authenticated via query parameter)
	e.GET("/ws", wsHandler.HandleWS)
}

// otpRequestKey keys the OTP rate limiter by client IP. The key must come
// from outside the JSON body; binding it here would consume the body before
// the handler reads it.
func otpRequestKey(c echo.Context) string {
	return "ip:" + c.RealIP()
}
