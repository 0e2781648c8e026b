package models

// DefaultGoal is the target balance used when a profile has no stored goal.
const DefaultGoal = 13500

// DefaultProfile is the profile implied when a user has none.
const DefaultProfile = "Default"

// Transaction is a single signed coin movement. PreviousBalance is derived
// by reconciliation and never trusted from storage.
type Transaction struct {
	ID              string `json:"id"`
	Date            string `json:"date"` // ISO 8601
	Amount          int    `json:"amount"`
	Source          string `json:"source"`
	PreviousBalance int    `json:"previousBalance"`
}

// BalanceAfter is the running balance immediately after t.
func (t Transaction) BalanceAfter() int {
	return t.PreviousBalance + t.Amount
}

// QuickAction is a saved one-tap transaction template.
type QuickAction struct {
	Text       string `json:"text"`
	Value      int    `json:"value"`
	IsPositive bool   `json:"isPositive"`
}

// SignedAmount returns the transaction amount the action produces.
func (q QuickAction) SignedAmount() int {
	if q.IsPositive {
		return q.Value
	}
	return -q.Value
}

// Settings holds the per-profile preferences.
type Settings struct {
	Goal         int           `json:"goal"`
	DarkMode     bool          `json:"darkMode"`
	QuickActions []QuickAction `json:"quickActions"`
	AllSources   []string      `json:"allSources"` // derived, never stored
}

// DefaultQuickActions returns the quick actions a new profile starts with.
func DefaultQuickActions() []QuickAction {
	return []QuickAction{
		{Text: "Salary", Value: 5000, IsPositive: true},
		{Text: "Food", Value: 100, IsPositive: false},
		{Text: "Transport", Value: 50, IsPositive: false},
	}
}

// DefaultSettings returns the settings of a freshly created profile.
func DefaultSettings() Settings {
	return Settings{
		Goal:         DefaultGoal,
		QuickActions: DefaultQuickActions(),
		AllSources:   []string{},
	}
}

// Clone returns a deep copy so callers can mutate the quick action list.
func (s Settings) Clone() Settings {
	out := s
	out.QuickActions = append([]QuickAction(nil), s.QuickActions...)
	out.AllSources = append([]string(nil), s.AllSources...)
	return out
}

// SettingsPatch is a partial settings update. Nil fields keep the stored value.
type SettingsPatch struct {
	Goal         *int           `json:"goal"`
	DarkMode     *bool          `json:"darkMode"`
	QuickActions *[]QuickAction `json:"quickActions"`
}

// Apply returns a copy of s with the patched fields replaced.
func (p SettingsPatch) Apply(s Settings) Settings {
	out := s.Clone()
	if p.Goal != nil {
		out.Goal = *p.Goal
	}
	if p.DarkMode != nil {
		out.DarkMode = *p.DarkMode
	}
	if p.QuickActions != nil {
		out.QuickActions = append([]QuickAction{}, *p.QuickActions...)
	}
	return out
}
