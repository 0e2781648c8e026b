package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ifti136/android-demo/internal/models"
)

const defaultSessionTTL = 720 * time.Hour

// ErrInvalidToken is returned for tokens that are malformed, expired or
// signed with another key.
var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	Username       string `json:"username"`
	Role           string `json:"role"`
	CurrentProfile string `json:"profile"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 session tokens.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService reads SESSION_SIGNING_KEY (required) and SESSION_TTL
// (Go duration, default 720h).
func NewTokenService() (*TokenService, error) {
	key, err := requireEnv("SESSION_SIGNING_KEY")
	if err != nil {
		return nil, err
	}
	ttl := defaultSessionTTL
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL %q", raw)
		}
	}
	return NewTokenServiceWithKey([]byte(key), ttl), nil
}

// NewTokenServiceWithKey creates a TokenService with an explicit key.
func NewTokenServiceWithKey(key []byte, ttl time.Duration) *TokenService {
	return &TokenService{key: key, ttl: ttl, now: time.Now}
}

// Issue signs a token carrying the session.
func (s *TokenService) Issue(session models.UserSession) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Username:       session.Username,
		Role:           session.Role,
		CurrentProfile: session.CurrentProfile,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its session.
func (s *TokenService) Parse(token string) (models.UserSession, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.UserSession{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return models.UserSession{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return models.UserSession{
		UserID:         claims.Subject,
		Username:       claims.Username,
		Role:           claims.Role,
		CurrentProfile: claims.CurrentProfile,
	}, nil
}
