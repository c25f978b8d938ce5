package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ternarybob/arbor"
	"golang.org/x/crypto/bcrypt"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
	badgerstorage "github.com/kyamadi/ai-chat-service/internal/storage/badger"
)

var (
	// ErrInvalidCredentials is returned on bad email/password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned when a session token fails validation
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Service handles registration, login, and session token validation.
// Passwords are stored as bcrypt hashes; sessions are stateless JWTs.
type Service struct {
	users     interfaces.UserStorage
	logger    arbor.ILogger
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates the auth service
func NewService(config *common.AuthConfig, users interfaces.UserStorage, logger arbor.ILogger) (*Service, error) {
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required (set via AICHAT_JWT_SECRET)")
	}

	ttl, err := time.ParseDuration(config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid token TTL '%s': %w", config.TokenTTL, err)
	}

	return &Service{
		users:     users,
		logger:    logger,
		jwtSecret: []byte(config.JWTSecret),
		tokenTTL:  ttl,
	}, nil
}

// Register creates a new account. Username and email must both be
// unused.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           common.NewUserID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", username).
		Msg("User registered")

	return user, nil
}

// Login verifies email and password and issues a session token
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, badgerstorage.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("User logged in")

	return token, user, nil
}

// issueToken signs a JWT carrying the user ID as subject
func (s *Service) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks the signature and expiry and returns the user ID
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
