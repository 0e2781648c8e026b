package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ifti136/android-demo/internal/auth"
	"github.com/ifti136/android-demo/internal/ledger"
	"github.com/ifti136/android-demo/internal/models"
	"github.com/ifti136/android-demo/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(deps *Dependencies, method, target, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	deps.Routes().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestRoutes_RequireSession(t *testing.T) {
	deps := &Dependencies{Profiles: &MockProfileService{}, Auth: newTestAuth()}

	assert.Equal(t, http.StatusUnauthorized, serve(deps, http.MethodGet, "/api/profile", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(deps, http.MethodGet, "/api/profile", "", "bogus").Code)
	assert.Equal(t, http.StatusOK, serve(deps, http.MethodGet, "/api/profile", "", "user-token").Code)
}

func TestRoutes_AdminOnly(t *testing.T) {
	deps := &Dependencies{
		Profiles: &MockProfileService{
			AdminStatsFunc: func(ctx context.Context) (models.AdminStats, error) {
				return models.AdminStats{TotalUsers: 4}, nil
			},
		},
		Auth: newTestAuth(),
	}

	assert.Equal(t, http.StatusForbidden, serve(deps, http.MethodGet, "/api/admin/stats", "", "user-token").Code)

	w := serve(deps, http.MethodGet, "/api/admin/stats", "", "admin-token")
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.AdminStats
	decodeBody(t, w, &stats)
	assert.Equal(t, 4, stats.TotalUsers)
}

func TestRoutes_HealthAndUnmatched(t *testing.T) {
	deps := &Dependencies{}

	w := serve(deps, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(deps, http.MethodGet, "/nope", "", "").Code)
}

func TestHandleLogin(t *testing.T) {
	deps := &Dependencies{Auth: &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password string) (auth.Result, error) {
			if username == "alice" && password == "pw" {
				return auth.Result{Session: testSession, Token: "tok"}, nil
			}
			return auth.Result{}, auth.ErrInvalidCredentials
		},
	}}

	w := serve(deps, http.MethodPost, "/api/mobile-login", `{"username":"alice","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp authResponse
	decodeBody(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "tok", resp.Token)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "u1", resp.Session.UserID)

	w = serve(deps, http.MethodPost, "/api/mobile-login", `{"username":"alice","password":"no"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp = authResponse{}
	decodeBody(t, w, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, auth.ErrInvalidCredentials.Error(), resp.Error)

	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodPost, "/api/mobile-login", `not json`, "").Code)
}

func TestHandleRegister_Conflict(t *testing.T) {
	deps := &Dependencies{Auth: &MockAuthService{
		RegisterFunc: func(ctx context.Context, username, password string) (auth.Result, error) {
			return auth.Result{}, auth.ErrUsernameTaken
		},
	}}

	w := serve(deps, http.MethodPost, "/api/mobile-register", `{"username":"bob","password":"pw"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleProfiles(t *testing.T) {
	deps := &Dependencies{
		Profiles: &MockProfileService{
			CreateProfileFunc: func(ctx context.Context, session models.UserSession, name string) ([]string, error) {
				if name == "Default" {
					return nil, profile.ErrProfileExists
				}
				return []string{"Default", name}, nil
			},
		},
		Auth: newTestAuth(),
	}

	w := serve(deps, http.MethodPost, "/api/profiles", `{"name":"Savings"}`, "user-token")
	require.Equal(t, http.StatusCreated, w.Code)
	var resp profilesResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, []string{"Default", "Savings"}, resp.Profiles)

	w = serve(deps, http.MethodPost, "/api/profiles", `{"name":"Default"}`, "user-token")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleSwitchProfile_ReissuesToken(t *testing.T) {
	deps := &Dependencies{Profiles: &MockProfileService{}, Auth: newTestAuth()}

	w := serve(deps, http.MethodPost, "/api/profiles/switch", `{"name":"Savings"}`, "user-token")

	require.Equal(t, http.StatusOK, w.Code)
	var resp switchResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "reissued", resp.Token)
	assert.Equal(t, "Savings", resp.Session.CurrentProfile)
	assert.Equal(t, "Savings", resp.Envelope.Profile)
}

func TestHandleTransactions(t *testing.T) {
	var added struct {
		amount       int
		source, date string
	}
	deps := &Dependencies{
		Profiles: &MockProfileService{
			AddTransactionFunc: func(ctx context.Context, session models.UserSession, amount int, source, date string) (models.ProfileEnvelope, error) {
				added.amount, added.source, added.date = amount, source, date
				return models.ProfileEnvelope{Balance: amount}, nil
			},
			DeleteTransactionFunc: func(ctx context.Context, session models.UserSession, id string) (models.ProfileEnvelope, error) {
				return models.ProfileEnvelope{}, profile.ErrTransactionNotFound
			},
			UpdateTransactionFunc: func(ctx context.Context, session models.UserSession, id string, amount int, source, date string) (models.ProfileEnvelope, error) {
				return models.ProfileEnvelope{}, profile.ErrInvalidAmount
			},
			HistoryFunc: func(ctx context.Context, session models.UserSession, q ledger.HistoryQuery) (ledger.HistoryPage, error) {
				assert.Equal(t, ledger.HistoryQuery{Source: "Food", Search: "10", Page: 2}, q)
				return ledger.HistoryPage{Page: 2, TotalPages: 3, Total: 25}, nil
			},
		},
		Auth: newTestAuth(),
	}

	w := serve(deps, http.MethodPost, "/api/transactions", `{"amount":500,"source":"Salary","date":"2026-10-01"}`, "user-token")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 500, added.amount)
	assert.Equal(t, "Salary", added.source)
	assert.Equal(t, "2026-10-01", added.date)

	assert.Equal(t, http.StatusNotFound, serve(deps, http.MethodDelete, "/api/transactions?id=x", "", "user-token").Code)
	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodDelete, "/api/transactions", "", "user-token").Code)
	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodPut, "/api/transactions?id=x", `{"amount":0}`, "user-token").Code)

	w = serve(deps, http.MethodGet, "/api/transactions?source=Food&q=10&page=2", "", "user-token")
	require.Equal(t, http.StatusOK, w.Code)
	var page ledger.HistoryPage
	decodeBody(t, w, &page)
	assert.Equal(t, 25, page.Total)

	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodGet, "/api/transactions?page=-1", "", "user-token").Code)
}

func TestHandleSettings_PartialBody(t *testing.T) {
	var got models.SettingsPatch
	deps := &Dependencies{
		Profiles: &MockProfileService{UpdateSettingsFunc: func(ctx context.Context, session models.UserSession, patch models.SettingsPatch) (models.ProfileEnvelope, error) {
			got = patch
			return models.ProfileEnvelope{}, nil
		}},
		Auth: newTestAuth(),
	}

	w := serve(deps, http.MethodPut, "/api/settings", `{"darkMode":true}`, "user-token")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.DarkMode)
	assert.True(t, *got.DarkMode)
	assert.Nil(t, got.Goal)
	assert.Nil(t, got.QuickActions)
}

func TestHandleQuickActions(t *testing.T) {
	deps := &Dependencies{
		Profiles: &MockProfileService{
			DeleteQuickActionFunc: func(ctx context.Context, session models.UserSession, index int) (models.ProfileEnvelope, error) {
				if index != 0 {
					return models.ProfileEnvelope{}, profile.ErrInvalidIndex
				}
				return models.ProfileEnvelope{}, nil
			},
		},
		Auth: newTestAuth(),
	}

	assert.Equal(t, http.StatusOK, serve(deps, http.MethodDelete, "/api/quick-actions?index=0", "", "user-token").Code)
	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodDelete, "/api/quick-actions?index=5", "", "user-token").Code)
	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodDelete, "/api/quick-actions?index=abc", "", "user-token").Code)
}

func TestHandleExport(t *testing.T) {
	deps := &Dependencies{
		Profiles: &MockProfileService{
			ExportProfileFunc: func(ctx context.Context, session models.UserSession) ([]models.Transaction, models.Settings, error) {
				return []models.Transaction{{ID: "a", Date: "2026-10-01", Amount: 5, Source: "Login"}}, models.DefaultSettings(), nil
			},
		},
		Auth: newTestAuth(),
	}

	w := serve(deps, http.MethodGet, "/api/export?format=csv", "", "user-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "Date,Amount,Source,ID\n2026-10-01,5,Login,a\n", w.Body.String())

	w = serve(deps, http.MethodGet, "/api/export", "", "user-token")
	require.Equal(t, http.StatusOK, w.Code)
	txs, settings, err := models.ParseExport(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	require.NotNil(t, settings)
	assert.Equal(t, models.DefaultGoal, settings.Goal)

	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodGet, "/api/export?format=xml", "", "user-token").Code)
}

func TestHandleAdminUsers_Delete(t *testing.T) {
	var deleted string
	deps := &Dependencies{
		Profiles: &MockProfileService{
			DeleteUserFunc: func(ctx context.Context, userID string) error {
				if userID == "missing" {
					return models.ErrNotFound
				}
				deleted = userID
				return nil
			},
		},
		Auth: newTestAuth(),
	}

	assert.Equal(t, http.StatusOK, serve(deps, http.MethodDelete, "/api/admin/users?id=u9", "", "admin-token").Code)
	assert.Equal(t, "u9", deleted)
	assert.Equal(t, http.StatusNotFound, serve(deps, http.MethodDelete, "/api/admin/users?id=missing", "", "admin-token").Code)
	assert.Equal(t, http.StatusBadRequest, serve(deps, http.MethodDelete, "/api/admin/users?id=admin", "", "admin-token").Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(models.ErrConcurrentUpdate))
	assert.Equal(t, http.StatusBadRequest, statusFor(profile.ErrInvalidIndex))
	assert.Equal(t, http.StatusUnauthorized, statusFor(auth.ErrUnauthenticated))
	assert.Equal(t, http.StatusForbidden, statusFor(auth.ErrForbidden))
	assert.Equal(t, http.StatusUnauthorized, statusFor(fmt.Errorf("%w: u1", profile.ErrAccountNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusFor(profile.ErrEmptyImport))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestWriteServiceError_HidesServerErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)

	writeServiceError(w, r, "load profile", errors.New("secret connection string"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to load profile"}`, w.Body.String())
}
