package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ifti136/android-demo/internal/auth"
	"github.com/ifti136/android-demo/internal/models"
)

// SessionHandler is a handler that runs with an authenticated session.
type SessionHandler func(w http.ResponseWriter, r *http.Request, session models.UserSession)

// WithSession authenticates the bearer token before calling next.
func (d *Dependencies) WithSession(next SessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			WriteError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		session, err := d.Auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			slog.Warn("rejected session token", "path", r.URL.Path, "error", err)
			WriteError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		next(w, r, session)
	}
}

// WithAdmin is WithSession restricted to admin sessions.
func (d *Dependencies) WithAdmin(next SessionHandler) http.HandlerFunc {
	return d.WithSession(func(w http.ResponseWriter, r *http.Request, session models.UserSession) {
		if err := auth.RequireAdmin(session); err != nil {
			slog.Warn("admin route denied", "path", r.URL.Path, "user_id", session.UserID)
			WriteError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, session)
	})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool                `json:"success"`
	Token   string              `json:"token,omitempty"`
	Session *models.UserSession `json:"session,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// HandleLogin handles POST /api/mobile-login.
func (d *Dependencies) HandleLogin(w http.ResponseWriter, r *http.Request) {
	d.handleCredentials(w, r, "log in", d.Auth.Login)
}

// HandleRegister handles POST /api/mobile-register.
func (d *Dependencies) HandleRegister(w http.ResponseWriter, r *http.Request) {
	d.handleCredentials(w, r, "register", d.Auth.Register)
}

func (d *Dependencies) handleCredentials(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, username, password string) (auth.Result, error)) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, authResponse{Error: "Invalid request body"})
		return
	}

	res, err := fn(r.Context(), req.Username, req.Password)
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			slog.Error("authentication failed", "op", op, "error", err)
			msg = "Failed to " + op
		} else if errors.Is(err, auth.ErrInvalidCredentials) && op == "log in" {
			status = http.StatusUnauthorized
		}
		WriteJSON(w, status, authResponse{Error: msg})
		return
	}

	slog.Info("session issued", "op", op, "user_id", res.Session.UserID)
	WriteJSON(w, http.StatusOK, authResponse{Success: true, Token: res.Token, Session: &res.Session})
}
