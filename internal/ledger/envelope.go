package ledger

import (
	"sort"
	"time"

	"github.com/ifti136/android-demo/internal/models"
	"github.com/shopspring/decimal"
)

// BuildEnvelope computes the view model of a reconciled profile as of now.
func BuildEnvelope(profile string, txs []models.Transaction, settings models.Settings, now time.Time) models.ProfileEnvelope {
	balance := Balance(txs)
	goal := settings.Goal

	settings = settings.Clone()
	settings.AllSources = distinctSources(txs)

	analytics := buildAnalytics(txs, balance)
	estimate, avgDaily := estimateDays(txs, analytics.TotalEarnings, goal, balance, now)
	analytics.AverageDailyEarnings = avgDaily

	if txs == nil {
		txs = []models.Transaction{}
	}

	return models.ProfileEnvelope{
		Profile:        profile,
		Transactions:   txs,
		Settings:       settings,
		Balance:        balance,
		Goal:           goal,
		Progress:       Progress(balance, goal),
		EstimatedDays:  estimate,
		DashboardStats: dashboardStats(txs, now),
		Analytics:      analytics,
		Achievements:   EvaluateAchievements(txs, balance, goal, now),
	}
}

// Progress is the truncated percentage of goal reached, within [0, 100].
func Progress(balance, goal int) int {
	if goal <= 0 {
		return 0
	}
	p := balance * 100 / goal
	return max(0, min(100, p))
}

// dashboardStats sums positive amounts into cumulative today/week/month
// windows. Weeks start on Monday, UTC.
func dashboardStats(txs []models.Transaction, now time.Time) models.DashboardStats {
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	var stats models.DashboardStats
	for _, t := range txs {
		if t.Amount <= 0 {
			continue
		}
		at, ok := ParseDate(t.Date)
		if !ok {
			continue
		}
		day := startOfDay(at)
		if day.Equal(today) {
			stats.Today += t.Amount
		}
		if !day.Before(weekStart) {
			stats.Week += t.Amount
		}
		if !day.Before(monthStart) {
			stats.Month += t.Amount
		}
	}
	return stats
}

func buildAnalytics(txs []models.Transaction, balance int) models.AnalyticsSnapshot {
	a := models.AnalyticsSnapshot{
		NetBalance:        balance,
		EarningsBreakdown: make(map[string]int),
		SpendingBreakdown: make(map[string]int),
	}
	for _, t := range txs {
		switch {
		case t.Amount > 0:
			a.TotalEarnings += t.Amount
			a.EarningsBreakdown[t.Source] += t.Amount
		case t.Amount < 0:
			a.TotalSpending -= t.Amount
			a.SpendingBreakdown[t.Source] -= t.Amount
		}
	}

	sorted := SortByDate(txs)
	a.Timeline = make([]models.TimelinePoint, 0, len(sorted))
	for _, t := range sorted {
		a.Timeline = append(a.Timeline, models.TimelinePoint{Date: t.Date, Balance: t.BalanceAfter()})
	}
	return a
}

// estimateDays projects how many days of average earnings remain until goal.
// It returns nil when there are no dated earnings to average.
func estimateDays(txs []models.Transaction, totalEarnings, goal, balance int, now time.Time) (*int, decimal.NullDecimal) {
	if totalEarnings <= 0 {
		return nil, decimal.NullDecimal{}
	}

	var first time.Time
	found := false
	for _, t := range txs {
		if t.Amount <= 0 {
			continue
		}
		at, ok := ParseDate(t.Date)
		if !ok {
			continue
		}
		if !found || at.Before(first) {
			first, found = at, true
		}
	}
	if !found {
		return nil, decimal.NullDecimal{}
	}

	daysSinceStart := max(1, int(now.Sub(first)/(24*time.Hour)))
	avgDaily := decimal.NewFromInt(int64(totalEarnings)).Div(decimal.NewFromInt(int64(daysSinceStart)))
	avg := decimal.NewNullDecimal(avgDaily.Round(2))

	remaining := goal - balance
	if remaining <= 0 {
		days := 0
		return &days, avg
	}
	if !avgDaily.IsPositive() {
		return nil, avg
	}
	// floor(remaining / (totalEarnings / daysSinceStart)), exactly.
	days := remaining * daysSinceStart / totalEarnings
	return &days, avg
}

func distinctSources(txs []models.Transaction) []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, t := range txs {
		if !seen[t.Source] {
			seen[t.Source] = true
			sources = append(sources, t.Source)
		}
	}
	sort.Strings(sources)
	return sources
}
