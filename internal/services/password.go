package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordIterations = 260000
	passwordSaltBytes  = 16
	passwordKeyBytes   = 32
	passwordScheme     = "pbkdf2:sha256:"
)

// PasswordHasher hashes passwords as
// "pbkdf2:sha256:<iterations>$<base64 salt>$<base64 key>".
type PasswordHasher struct {
	Iterations int
}

// NewPasswordHasher returns a hasher with the production iteration count.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{Iterations: passwordIterations}
}

// Hash derives a new hash of password with a random salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, passwordSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, h.Iterations, passwordKeyBytes, sha256.New)
	return fmt.Sprintf("%s%d$%s$%s", passwordScheme, h.Iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key)), nil
}

// Verify reports whether password matches encoded. Malformed hashes never
// match.
func (h *PasswordHasher) Verify(password, encoded string) bool {
	rest, ok := strings.CutPrefix(encoded, passwordScheme)
	if !ok {
		return false
	}
	parts := strings.Split(rest, "$")
	if len(parts) != 3 {
		return false
	}
	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(want) == 0 {
		return false
	}
	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
