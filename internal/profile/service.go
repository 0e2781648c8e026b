// Package profile implements the profile operations as read-modify-write
// cycles over a user's whole stored document.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ifti136/android-demo/internal/ledger"
	"github.com/ifti136/android-demo/internal/models"
)

// maxWriteAttempts bounds how often a mutation is re-run after losing a
// concurrent-update race.
const maxWriteAttempts = 3

// timestampLayout is fixed width so stored dates also sort as strings.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Service runs profile operations against a DocumentStore.
type Service struct {
	store DocumentStore
	users UserDirectory
	now   func() time.Time
}

// NewService creates a Service. users may be nil when admin operations are
// not needed.
func NewService(store DocumentStore, users UserDirectory) *Service {
	return &Service{store: store, users: users, now: time.Now}
}

// WithClock replaces the clock used for timestamps and date windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func profileName(session models.UserSession) string {
	if session.CurrentProfile == "" {
		return models.DefaultProfile
	}
	return session.CurrentProfile
}

// requireAccount fails with ErrAccountNotFound once the account is gone, so
// a still-valid session cannot recreate a deleted user's document.
func (s *Service) requireAccount(ctx context.Context, userID string) error {
	if s.users == nil {
		return nil
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	return nil
}

// update applies fn to a fresh copy of the user's document and writes it back,
// re-running the whole cycle when another writer got there first.
func (s *Service) update(ctx context.Context, userID string, fn func(data *models.UserData) error) (*models.UserData, error) {
	if err := s.requireAccount(ctx, userID); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		data, etag, err := s.store.GetUserData(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user data: %w", err)
		}
		if err := fn(data); err != nil {
			return nil, err
		}
		data.LastUpdated = s.timestamp()

		err = s.store.PutUserData(ctx, userID, data, etag)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, models.ErrConcurrentUpdate) || attempt == maxWriteAttempts {
			return nil, fmt.Errorf("failed to save user data: %w", err)
		}
		slog.Warn("user data changed during update, retrying", "user_id", userID, "attempt", attempt)
	}
}

// updateProfile mutates the session's current profile and returns its new
// envelope. Transactions are reconciled before fn sees them and again after.
func (s *Service) updateProfile(ctx context.Context, session models.UserSession, fn func(p *models.Profile) error) (models.ProfileEnvelope, error) {
	name := profileName(session)
	data, err := s.update(ctx, session.UserID, func(data *models.UserData) error {
		p := data.ProfileOrDefault(name)
		p.Transactions = ledger.Reconcile(p.Transactions)
		if err := fn(&p); err != nil {
			return err
		}
		p.Transactions = ledger.Reconcile(p.Transactions)
		p.LastUpdated = s.timestamp()
		data.Profiles[name] = p
		data.LastActiveProfile = name
		return nil
	})
	if err != nil {
		return models.ProfileEnvelope{}, err
	}
	p := data.Profiles[name]
	return ledger.BuildEnvelope(name, p.Transactions, p.Settings, s.now()), nil
}

func (s *Service) loadProfile(ctx context.Context, userID, name string) (models.Profile, error) {
	data, _, err := s.store.GetUserData(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to load user data: %w", err)
	}
	p := data.ProfileOrDefault(name)
	p.Transactions = ledger.Reconcile(p.Transactions)
	return p, nil
}

// LoadProfile returns the envelope of the named profile.
func (s *Service) LoadProfile(ctx context.Context, userID, name string) (models.ProfileEnvelope, error) {
	if name == "" {
		name = models.DefaultProfile
	}
	p, err := s.loadProfile(ctx, userID, name)
	if err != nil {
		return models.ProfileEnvelope{}, err
	}
	return ledger.BuildEnvelope(name, p.Transactions, p.Settings, s.now()), nil
}

// LastActiveProfile returns the profile the user worked on last.
func (s *Service) LastActiveProfile(ctx context.Context, userID string) (string, error) {
	data, _, err := s.store.GetUserData(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user data: %w", err)
	}
	return data.LastActiveProfile, nil
}

// ListProfiles returns the user's profile names, sorted.
func (s *Service) ListProfiles(ctx context.Context, session models.UserSession) ([]string, error) {
	data, _, err := s.store.GetUserData(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user data: %w", err)
	}
	return data.ProfileNames(), nil
}

// SwitchProfile records name as the active profile and returns the updated
// session. The profile itself is created on its first write.
func (s *Service) SwitchProfile(ctx context.Context, session models.UserSession, name string) (models.UserSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return session, ErrInvalidProfileName
	}
	_, err := s.update(ctx, session.UserID, func(data *models.UserData) error {
		data.LastActiveProfile = name
		return nil
	})
	if err != nil {
		return session, err
	}
	session.CurrentProfile = name
	return session, nil
}

// CreateProfile adds an empty profile with default settings, makes it active
// and returns all profile names.
func (s *Service) CreateProfile(ctx context.Context, session models.UserSession, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidProfileName
	}
	data, err := s.update(ctx, session.UserID, func(data *models.UserData) error {
		if _, exists := data.Profiles[name]; exists {
			return ErrProfileExists
		}
		data.Profiles[name] = models.Profile{
			Transactions: []models.Transaction{},
			Settings:     models.DefaultSettings(),
			LastUpdated:  s.timestamp(),
		}
		data.LastActiveProfile = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data.ProfileNames(), nil
}

func validateTransaction(amount int, source, date string) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(source) == "" {
		return ErrMissingSource
	}
	if _, ok := ledger.ParseDate(date); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

// AddTransaction records a new transaction. An empty date means now.
func (s *Service) AddTransaction(ctx context.Context, session models.UserSession, amount int, source, date string) (models.ProfileEnvelope, error) {
	if date == "" {
		date = s.timestamp()
	}
	source = strings.TrimSpace(source)
	if err := validateTransaction(amount, source, date); err != nil {
		return models.ProfileEnvelope{}, err
	}

	tx := models.Transaction{ID: uuid.NewString(), Date: date, Amount: amount, Source: source}
	return s.updateProfile(ctx, session, func(p *models.Profile) error {
		p.Transactions = append(p.Transactions, tx)
		return nil
	})
}

// UpdateTransaction replaces the amount, source and date of a transaction.
func (s *Service) UpdateTransaction(ctx context.Context, session models.UserSession, id string, amount int, source, date string) (models.ProfileEnvelope, error) {
	source = strings.TrimSpace(source)
	if err := validateTransaction(amount, source, date); err != nil {
		return models.ProfileEnvelope{}, err
	}

	return s.updateProfile(ctx, session, func(p *models.Profile) error {
		i := slices.IndexFunc(p.Transactions, func(t models.Transaction) bool { return t.ID == id })
		if i < 0 {
			return ErrTransactionNotFound
		}
		p.Transactions[i].Amount = amount
		p.Transactions[i].Source = source
		p.Transactions[i].Date = date
		return nil
	})
}

// DeleteTransaction removes a transaction by id.
func (s *Service) DeleteTransaction(ctx context.Context, session models.UserSession, id string) (models.ProfileEnvelope, error) {
	return s.updateProfile(ctx, session, func(p *models.Profile) error {
		before := len(p.Transactions)
		p.Transactions = slices.DeleteFunc(p.Transactions, func(t models.Transaction) bool { return t.ID == id })
		if len(p.Transactions) == before {
			return ErrTransactionNotFound
		}
		return nil
	})
}

func validQuickAction(a models.QuickAction) bool {
	return strings.TrimSpace(a.Text) != "" && a.Value >= 0
}

// UpdateSettings merges patch onto the profile settings; omitted fields keep
// their stored values. A negative goal is stored as 0.
func (s *Service) UpdateSettings(ctx context.Context, session models.UserSession, patch models.SettingsPatch) (models.ProfileEnvelope, error) {
	if patch.QuickActions != nil {
		for _, a := range *patch.QuickActions {
			if !validQuickAction(a) {
				return models.ProfileEnvelope{}, ErrInvalidQuickAction
			}
		}
	}

	return s.updateProfile(ctx, session, func(p *models.Profile) error {
		next := patch.Apply(p.Settings)
		next.Goal = max(0, next.Goal)
		next.AllSources = nil
		p.Settings = next
		return nil
	})
}

// AddQuickAction appends a quick action to the profile settings.
func (s *Service) AddQuickAction(ctx context.Context, session models.UserSession, action models.QuickAction) (models.ProfileEnvelope, error) {
	action.Text = strings.TrimSpace(action.Text)
	if !validQuickAction(action) {
		return models.ProfileEnvelope{}, ErrInvalidQuickAction
	}
	return s.updateProfile(ctx, session, func(p *models.Profile) error {
		p.Settings = p.Settings.Clone()
		p.Settings.QuickActions = append(p.Settings.QuickActions, action)
		return nil
	})
}

// DeleteQuickAction removes the quick action at index. An index outside the
// list fails with ErrInvalidIndex and leaves the list unchanged.
func (s *Service) DeleteQuickAction(ctx context.Context, session models.UserSession, index int) (models.ProfileEnvelope, error) {
	return s.updateProfile(ctx, session, func(p *models.Profile) error {
		if index < 0 || index >= len(p.Settings.QuickActions) {
			return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
		}
		p.Settings = p.Settings.Clone()
		p.Settings.QuickActions = slices.Delete(p.Settings.QuickActions, index, index+1)
		return nil
	})
}

// ImportData overwrites the current profile's transactions. Transactions
// that AddTransaction would reject are dropped, and an import left with none
// fails with ErrEmptyImport. Nil settings keep the existing ones.
func (s *Service) ImportData(ctx context.Context, session models.UserSession, txs []models.Transaction, settings *models.Settings) (models.ProfileEnvelope, error) {
	imported := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		t.Source = strings.TrimSpace(t.Source)
		if err := validateTransaction(t.Amount, t.Source, t.Date); err != nil {
			slog.Warn("skipping invalid imported transaction", "user_id", session.UserID, "id", t.ID, "error", err)
			continue
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		imported = append(imported, t)
	}
	if len(imported) == 0 {
		return models.ProfileEnvelope{}, ErrEmptyImport
	}

	return s.updateProfile(ctx, session, func(p *models.Profile) error {
		p.Transactions = imported
		if settings != nil {
			next := settings.Clone()
			next.Goal = max(0, next.Goal)
			next.AllSources = nil
			p.Settings = next
		}
		return nil
	})
}

// ExportProfile returns the reconciled transactions and settings of the
// session's current profile.
func (s *Service) ExportProfile(ctx context.Context, session models.UserSession) ([]models.Transaction, models.Settings, error) {
	p, err := s.loadProfile(ctx, session.UserID, profileName(session))
	if err != nil {
		return nil, models.Settings{}, err
	}
	return p.Transactions, p.Settings, nil
}

// History returns one filtered page of the current profile's transactions.
func (s *Service) History(ctx context.Context, session models.UserSession, q ledger.HistoryQuery) (ledger.HistoryPage, error) {
	p, err := s.loadProfile(ctx, session.UserID, profileName(session))
	if err != nil {
		return ledger.HistoryPage{}, err
	}
	return ledger.QueryHistory(p.Transactions, q), nil
}
