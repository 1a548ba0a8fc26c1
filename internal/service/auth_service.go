package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/paisabank/paisabank-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService implements OTP-gated first-party authentication: a mock OTP is
// issued per phone number, and a successful verification bootstraps the user
// (plus a default account) and returns an HS256 JWT.
type AuthService struct {
	userRepo        domain.UserRepository
	accountRepo     domain.AccountRepository
	jwtSecret       []byte
	jwtTTL          time.Duration
	otpTTL          time.Duration
	defaultCurrency string
	devMode         bool

	mu   sync.Mutex
	otps map[string]otpEntry
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, accountRepo domain.AccountRepository, jwtSecret string, jwtTTL, otpTTL time.Duration, defaultCurrency string, devMode bool) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		accountRepo:     accountRepo,
		jwtSecret:       []byte(jwtSecret),
		jwtTTL:          jwtTTL,
		otpTTL:          otpTTL,
		defaultCurrency: defaultCurrency,
		devMode:         devMode,
		otps:            make(map[string]otpEntry),
	}
}

// RequestOtp issues a 6-digit code for the phone number. There is no SMS
// provider in this system: in dev mode the code is logged so it can be read
// from the console.
func (s *AuthService) RequestOtp(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.ErrInvalidInput
	}

	code, err := newOtpCode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.otps[phone] = otpEntry{code: code, expiresAt: time.Now().Add(s.otpTTL)}
	s.mu.Unlock()

	if s.devMode {
		log.Info().Str("phone", phone).Str("otp", code).Msg("OTP issued (dev mode)")
	} else {
		log.Info().Str("phone", phone).Msg("OTP issued")
	}
	return nil
}

// VerifyResult is returned on successful OTP verification
type VerifyResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
	NewUser   bool
}

// VerifyOtp checks the code, consumes it, finds or creates the user (with a
// default zero-balance account on first login) and issues a JWT.
func (s *AuthService) VerifyOtp(phone, code string) (*VerifyResult, error) {
	phone = strings.TrimSpace(phone)

	s.mu.Lock()
	entry, ok := s.otps[phone]
	if ok {
		// Single use regardless of outcome
		delete(s.otps, phone)
	}
	s.mu.Unlock()

	if !ok || entry.code != code || time.Now().After(entry.expiresAt) {
		return nil, domain.ErrOtpInvalid
	}

	user, newUser, err := s.findOrCreateUser(phone)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{User: user, Token: token, ExpiresAt: expiresAt, NewUser: newUser}, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *AuthService) findOrCreateUser(phone string) (*domain.User, bool, error) {
	user, err := s.userRepo.GetByPhone(phone)
	if err == nil {
		return user, false, nil
	}
	if err != domain.ErrUserNotFound {
		return nil, false, err
	}

	user, err = s.userRepo.Create(&domain.User{
		Phone: phone,
		Role:  domain.RoleUser,
	})
	if err != nil {
		return nil, false, err
	}

	// Every user starts with one zero-balance account in the default currency
	if _, err := s.accountRepo.Create(&domain.Account{
		UserID:   user.ID,
		Number:   NewAccountNumber(),
		Currency: s.defaultCurrency,
	}); err != nil {
		return nil, false, err
	}

	return user, true, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.jwtTTL)
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func newOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}
