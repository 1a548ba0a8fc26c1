package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/paisabank/paisabank-backend/internal/middleware"
	"github.com/paisabank/paisabank-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles OTP authentication HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestOtpRequest represents the OTP request body
type RequestOtpRequest struct {
	Phone string `json:"phone"`
}

// VerifyOtpRequest represents the OTP verification request body
type VerifyOtpRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyOtpResponse represents the verification response
type VerifyOtpResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	NewUser   bool         `json:"newUser"`
	User      UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        string  `json:"id"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"createdAt"`
}

// RequestOtp handles POST /api/v1/auth/otp
func (h *AuthHandler) RequestOtp(c echo.Context) error {
	var req RequestOtpRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.authService.RequestOtp(req.Phone); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "phone", Message: "Phone number is required"},
			})
		}
		log.Error().Err(err).Msg("Failed to issue OTP")
		return NewInternalError(c, "Failed to issue OTP")
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "OTP sent",
	})
}

// VerifyOtp handles POST /api/v1/auth/verify
func (h *AuthHandler) VerifyOtp(c echo.Context) error {
	var req VerifyOtpRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.VerifyOtp(req.Phone, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrOtpInvalid) {
			return NewUnauthorizedError(c, "Invalid or expired code")
		}
		log.Error().Err(err).Msg("Failed to verify OTP")
		return NewInternalError(c, "Failed to verify OTP")
	}

	log.Info().Str("user_id", result.User.ID.String()).Bool("new_user", result.NewUser).Msg("User authenticated")

	return c.JSON(http.StatusOK, VerifyOtpResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
		NewUser:   result.NewUser,
		User:      toUserResponse(result.User),
	})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)

	user, err := h.authService.GetUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewUnauthorizedError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get user")
		return NewInternalError(c, "Failed to get user")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Phone:     user.Phone,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
