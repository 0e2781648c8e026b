package services

import (
	"testing"
	"time"

	"github.com/ifti136/android-demo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSession = models.UserSession{UserID: "u1", Username: "alice", Role: models.RoleAdmin, CurrentProfile: "Savings"}

func TestTokenService_IssueAndParse(t *testing.T) {
	s := NewTokenServiceWithKey([]byte("key"), time.Hour)

	token, err := s.Issue(testSession)
	require.NoError(t, err)

	got, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, testSession, got)
}

func TestTokenService_RejectsWrongKey(t *testing.T) {
	token, err := NewTokenServiceWithKey([]byte("key"), time.Hour).Issue(testSession)
	require.NoError(t, err)

	_, err = NewTokenServiceWithKey([]byte("other"), time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	s := NewTokenServiceWithKey([]byte("key"), time.Hour)
	issued := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	token, err := s.Issue(testSession)
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	_, err := NewTokenServiceWithKey([]byte("key"), time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_Config(t *testing.T) {
	t.Setenv("SESSION_SIGNING_KEY", "")
	_, err := NewTokenService()
	assert.ErrorContains(t, err, "SESSION_SIGNING_KEY")

	t.Setenv("SESSION_SIGNING_KEY", "k")
	t.Setenv("SESSION_TTL", "soon")
	_, err = NewTokenService()
	assert.ErrorContains(t, err, "SESSION_TTL")

	t.Setenv("SESSION_TTL", "2h")
	s, err := NewTokenService()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, s.ttl)
}
