package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserSession identifies the signed-in user and the profile they work on.
type UserSession struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	CurrentProfile string `json:"currentProfile"`
}

// IsAdmin reports whether the session carries the admin role.
func (s UserSession) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// UserRecord is the stored account of a user.
type UserRecord struct {
	ID            string `json:"id"` // RowKey
	Username      string `json:"username"`
	UsernameLower string `json:"username_lower"`
	PasswordHash  string `json:"-"`
	CreatedAt     string `json:"created_at"` // RFC 3339
	Role          string `json:"role"`
}
