// Package auth registers and signs in users and turns session tokens back
// into sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ifti136/android-demo/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("admin role required")
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, rec models.UserRecord) error
	GetUserByUsername(ctx context.Context, username string) (models.UserRecord, error)
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// Tokens issues and validates session tokens.
type Tokens interface {
	Issue(session models.UserSession) (string, error)
	Parse(token string) (models.UserSession, error)
}

// Profiles reports the profile a user last worked on.
type Profiles interface {
	LastActiveProfile(ctx context.Context, userID string) (string, error)
}

// Result is what a successful login or registration returns.
type Result struct {
	Session models.UserSession
	Token   string
}

// Service implements registration, login and token authentication.
type Service struct {
	users    UserStore
	hasher   Hasher
	tokens   Tokens
	profiles Profiles
	now      func() time.Time
}

// NewService creates an auth Service.
func NewService(users UserStore, hasher Hasher, tokens Tokens, profiles Profiles) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, profiles: profiles, now: time.Now}
}

// Register creates a user with the "user" role and signs them in on the
// Default profile.
func (s *Service) Register(ctx context.Context, username, password string) (Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Result{}, ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Result{}, err
	}
	rec := models.UserRecord{
		ID:            uuid.NewString(),
		Username:      username,
		UsernameLower: strings.ToLower(username),
		PasswordHash:  hash,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
		Role:          models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, rec); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			return Result{}, ErrUsernameTaken
		}
		return Result{}, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("registered user", "user_id", rec.ID)

	return s.issue(models.UserSession{
		UserID:         rec.ID,
		Username:       rec.Username,
		Role:           rec.Role,
		CurrentProfile: models.DefaultProfile,
	})
}

// Login verifies the password and resumes the user's last active profile.
func (s *Service) Login(ctx context.Context, username, password string) (Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Result{}, ErrInvalidCredentials
	}

	rec, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if !s.hasher.Verify(password, rec.PasswordHash) {
		slog.Warn("failed login", "user_id", rec.ID)
		return Result{}, ErrInvalidCredentials
	}

	profile, err := s.profiles.LastActiveProfile(ctx, rec.ID)
	if err != nil {
		return Result{}, err
	}
	if profile == "" {
		profile = models.DefaultProfile
	}

	return s.issue(models.UserSession{
		UserID:         rec.ID,
		Username:       rec.Username,
		Role:           rec.Role,
		CurrentProfile: profile,
	})
}

// Authenticate returns the session carried by token.
func (s *Service) Authenticate(token string) (models.UserSession, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return models.UserSession{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return session, nil
}

// Reissue signs a token for an updated session, such as after a profile switch.
func (s *Service) Reissue(session models.UserSession) (Result, error) {
	return s.issue(session)
}

// RequireAdmin fails with ErrForbidden unless the session has the admin role.
func RequireAdmin(session models.UserSession) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *Service) issue(session models.UserSession) (Result, error) {
	token, err := s.tokens.Issue(session)
	if err != nil {
		return Result{}, err
	}
	return Result{Session: session, Token: token}, nil
}
