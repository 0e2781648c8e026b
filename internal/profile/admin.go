package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ifti136/android-demo/internal/ledger"
	"github.com/ifti136/android-demo/internal/models"
)

// signupWindowDays is the length of the admin sign-up chart.
const signupWindowDays = 30

var errNoDirectory = errors.New("user directory is not configured")

// AdminStats totals coins and transactions over every user and counts
// sign-ups per UTC day for the last 30 days.
func (s *Service) AdminStats(ctx context.Context) (models.AdminStats, error) {
	if s.users == nil {
		return models.AdminStats{}, errNoDirectory
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return models.AdminStats{}, fmt.Errorf("failed to list users: %w", err)
	}

	now := s.now().UTC()
	windowStart := now.Add(-signupWindowDays * 24 * time.Hour)
	signups := make(map[string]int)
	stats := models.AdminStats{TotalUsers: len(users)}

	for _, u := range users {
		if created, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil && created.After(windowStart) {
			signups[created.UTC().Format(time.DateOnly)]++
		}

		data, _, err := s.store.GetUserData(ctx, u.ID)
		if err != nil {
			slog.Warn("failed to load user data for admin stats", "user_id", u.ID, "error", err)
			continue
		}
		txs := data.AllTransactions()
		stats.TotalTransactions += len(txs)
		stats.TotalCoins += ledger.Balance(txs)
	}

	for i := signupWindowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(time.DateOnly)
		stats.Labels = append(stats.Labels, day)
		stats.NewUsersData = append(stats.NewUsersData, signups[day])
	}
	return stats, nil
}

// AdminUsers lists every user with their balance across all profiles,
// ordered by lowercase username.
func (s *Service) AdminUsers(ctx context.Context) ([]models.AdminUserRow, error) {
	if s.users == nil {
		return nil, errNoDirectory
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
	})

	rows := make([]models.AdminUserRow, 0, len(users))
	for _, u := range users {
		row := models.AdminUserRow{
			UserID:      u.ID,
			Username:    orNA(u.Username),
			CreatedAt:   orNA(u.CreatedAt),
			LastUpdated: "N/A",
		}
		data, _, err := s.store.GetUserData(ctx, u.ID)
		if err != nil {
			slog.Warn("failed to load user data for admin row", "user_id", u.ID, "error", err)
		} else {
			txs := data.AllTransactions()
			row.Balance = ledger.Balance(txs)
			row.TxnCount = len(txs)
			row.LastUpdated = orNA(data.LastUpdated)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DeleteUser removes a user's account and data.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if s.users == nil {
		return errNoDirectory
	}
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	if err := s.store.DeleteUserData(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user data %s: %w", userID, err)
	}
	slog.Info("deleted user", "user_id", userID)
	return nil
}

// Users lists every user account.
func (s *Service) Users(ctx context.Context) ([]models.UserRecord, error) {
	if s.users == nil {
		return nil, errNoDirectory
	}
	return s.users.ListUsers(ctx)
}

// SnapshotUser returns the user's whole document in its stored form.
func (s *Service) SnapshotUser(ctx context.Context, userID string) ([]byte, error) {
	data, _, err := s.store.GetUserData(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user data: %w", err)
	}
	return models.MarshalUserData(data)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
