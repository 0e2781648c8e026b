package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Profile is a named partition of a user's data.
type Profile struct {
	Transactions []Transaction
	Settings     Settings
	LastUpdated  string
}

// UserData is the typed form of a user's stored document.
type UserData struct {
	Profiles          map[string]Profile
	LastActiveProfile string
	LastUpdated       string
}

// NewUserData returns an empty document.
func NewUserData() *UserData {
	return &UserData{
		Profiles:          make(map[string]Profile),
		LastActiveProfile: DefaultProfile,
	}
}

// ProfileOrDefault returns the named profile, or an empty profile with
// default settings when it does not exist yet.
func (d *UserData) ProfileOrDefault(name string) Profile {
	if p, ok := d.Profiles[name]; ok {
		return p
	}
	return Profile{Transactions: []Transaction{}, Settings: DefaultSettings()}
}

// ProfileNames returns the sorted profile names, or the implied default.
func (d *UserData) ProfileNames() []string {
	if len(d.Profiles) == 0 {
		return []string{DefaultProfile}
	}
	names := make([]string, 0, len(d.Profiles))
	for name := range d.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllTransactions flattens the transactions of every profile.
func (d *UserData) AllTransactions() []Transaction {
	var all []Transaction
	for _, name := range d.ProfileNames() {
		all = append(all, d.Profiles[name].Transactions...)
	}
	return all
}

// Stored (snake_case) shapes. Only MarshalUserData and MarshalExport use them.

type storedTransaction struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Amount          int    `json:"amount"`
	Source          string `json:"source"`
	PreviousBalance int    `json:"previous_balance"`
}

type storedQuickAction struct {
	Text       string `json:"text"`
	Value      int    `json:"value"`
	IsPositive bool   `json:"is_positive"`
}

type storedSettings struct {
	Goal         int                 `json:"goal"`
	DarkMode     bool                `json:"dark_mode"`
	QuickActions []storedQuickAction `json:"quick_actions"`
}

type storedProfile struct {
	Transactions []storedTransaction `json:"transactions"`
	Settings     storedSettings      `json:"settings"`
	LastUpdated  string              `json:"last_updated"`
}

type storedUserData struct {
	Profiles          map[string]storedProfile `json:"profiles"`
	LastActiveProfile string                   `json:"last_active_profile"`
	LastUpdated       string                   `json:"last_updated,omitempty"`
}

type storedExport struct {
	Transactions []storedTransaction `json:"transactions"`
	Settings     storedSettings      `json:"settings"`
}

// MarshalUserData encodes d in its canonical stored form.
func MarshalUserData(d *UserData) ([]byte, error) {
	out := storedUserData{
		Profiles:          make(map[string]storedProfile, len(d.Profiles)),
		LastActiveProfile: d.LastActiveProfile,
		LastUpdated:       d.LastUpdated,
	}
	if out.LastActiveProfile == "" {
		out.LastActiveProfile = DefaultProfile
	}
	for name, p := range d.Profiles {
		out.Profiles[name] = storedProfile{
			Transactions: toStoredTransactions(p.Transactions),
			Settings:     toStoredSettings(p.Settings),
			LastUpdated:  p.LastUpdated,
		}
	}
	return json.Marshal(out)
}

// MarshalExport encodes a profile as a portable {transactions, settings}
// document.
func MarshalExport(txs []Transaction, s Settings) ([]byte, error) {
	return json.MarshalIndent(storedExport{
		Transactions: toStoredTransactions(txs),
		Settings:     toStoredSettings(s),
	}, "", "  ")
}

func toStoredTransactions(txs []Transaction) []storedTransaction {
	out := make([]storedTransaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, storedTransaction(t))
	}
	return out
}

func toStoredSettings(s Settings) storedSettings {
	qa := make([]storedQuickAction, 0, len(s.QuickActions))
	for _, a := range s.QuickActions {
		qa = append(qa, storedQuickAction(a))
	}
	return storedSettings{Goal: s.Goal, DarkMode: s.DarkMode, QuickActions: qa}
}

// ParseUserData decodes a stored document. Malformed records fall back to
// defaults or are dropped; only a document that is not a JSON object at all
// is an error. An empty input yields an empty document.
func ParseUserData(raw []byte) (*UserData, error) {
	data := NewUserData()
	if len(bytes.TrimSpace(raw)) == 0 {
		return data, nil
	}

	doc, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode user data: %w", err)
	}

	if name, ok := doc["last_active_profile"].(string); ok && name != "" {
		data.LastActiveProfile = name
	}
	data.LastUpdated, _ = doc["last_updated"].(string)

	profiles, ok := doc["profiles"].(map[string]any)
	if !ok {
		// Legacy single-profile layout.
		if _, hasTx := doc["transactions"]; hasTx {
			data.Profiles[DefaultProfile] = Profile{
				Transactions: parseTransactions(doc["transactions"]),
				Settings:     parseSettingsOrDefault(doc["settings"]),
				LastUpdated:  data.LastUpdated,
			}
		}
		return data, nil
	}

	for name, rawProfile := range profiles {
		pm, _ := rawProfile.(map[string]any)
		p := Profile{
			Transactions: parseTransactions(pm["transactions"]),
			Settings:     parseSettingsOrDefault(pm["settings"]),
		}
		p.LastUpdated, _ = pm["last_updated"].(string)
		data.Profiles[name] = p
	}
	return data, nil
}

// ParseExport decodes a {transactions, settings} document. The returned
// settings are nil when the document carries none.
func ParseExport(raw []byte) ([]Transaction, *Settings, error) {
	doc, err := decodeObject(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode export: %w", err)
	}
	if _, ok := doc["transactions"]; !ok {
		return nil, nil, fmt.Errorf("export has no transactions")
	}
	txs := parseTransactions(doc["transactions"])
	if _, ok := doc["settings"].(map[string]any); !ok {
		return txs, nil, nil
	}
	s := parseSettingsOrDefault(doc["settings"])
	return txs, &s, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is not an object")
	}
	return doc, nil
}

func parseTransactions(raw any) []Transaction {
	list, _ := raw.([]any)
	txs := make([]Transaction, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		date, ok := m["date"].(string)
		if !ok {
			continue
		}
		source, ok := m["source"].(string)
		if !ok {
			continue
		}
		amount, ok := asInt(m["amount"])
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		if id == "" {
			id = uuid.NewString()
		}
		prev, _ := asInt(m["previous_balance"])
		txs = append(txs, Transaction{
			ID:              id,
			Date:            date,
			Amount:          amount,
			Source:          source,
			PreviousBalance: prev,
		})
	}
	return txs
}

func parseSettingsOrDefault(raw any) Settings {
	m, ok := raw.(map[string]any)
	if !ok {
		return DefaultSettings()
	}

	s := DefaultSettings()
	if goal, ok := asInt(m["goal"]); ok {
		s.Goal = goal
	}
	if dark, ok := m["dark_mode"].(bool); ok {
		s.DarkMode = dark
	}

	list, ok := m["quick_actions"].([]any)
	if !ok {
		return s
	}
	s.QuickActions = make([]QuickAction, 0, len(list))
	for _, item := range list {
		qm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, ok := qm["text"].(string)
		if !ok {
			continue
		}
		value, ok := asInt(qm["value"])
		if !ok || value < 0 {
			continue
		}
		positive := true
		if p, ok := qm["is_positive"].(bool); ok {
			positive = p
		}
		s.QuickActions = append(s.QuickActions, QuickAction{Text: text, Value: value, IsPositive: positive})
	}
	return s
}

// asInt accepts JSON numbers (truncated toward zero) and integer strings.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
