package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/ifti136/android-demo/internal/models"
)

const (
	minStreakDays  = 3
	minNoSpendDays = 7
)

type thresholdBadge struct {
	balance int
	badge   models.Achievement
}

var thresholdBadges = []thresholdBadge{
	{1000, models.Achievement{Icon: "💰", Name: "Getting Started", Description: "Reach 1,000 coins"}},
	{5000, models.Achievement{Icon: "📈", Name: "Serious Saver", Description: "Reach 5,000 coins"}},
	{10000, models.Achievement{Icon: "🏦", Name: "Coin Hoarder", Description: "Reach 10,000 coins"}},
}

// EvaluateAchievements returns the badges earned as of now, in evaluation
// order: balance thresholds, goal, login streak, no-spend run.
func EvaluateAchievements(txs []models.Transaction, balance, goal int, now time.Time) []models.Achievement {
	achievements := []models.Achievement{}

	for _, tb := range thresholdBadges {
		if balance >= tb.balance {
			achievements = append(achievements, tb.badge)
		}
	}
	if balance >= goal {
		achievements = append(achievements, models.Achievement{
			Icon:        "👑",
			Name:        "Epic Box Secured!",
			Description: fmt.Sprintf("You reached the %d coin goal!", goal),
		})
	}

	if streak := LoginStreak(txs, now); streak >= minStreakDays {
		achievements = append(achievements, models.Achievement{
			Icon:        "🔥",
			Name:        fmt.Sprintf("%d-Day Streak", streak),
			Description: fmt.Sprintf("Logged in %d days in a row!", streak),
		})
	}

	if days := NoSpendDays(txs, now); days >= minNoSpendDays {
		achievements = append(achievements, models.Achievement{
			Icon:        "🛡",
			Name:        "Disciplined",
			Description: fmt.Sprintf("No spending for %d days!", days),
		})
	}

	return achievements
}

// LoginStreak counts consecutive UTC days ending today that have a positive
// "login" transaction. A streak that ended yesterday counts as zero.
func LoginStreak(txs []models.Transaction, now time.Time) int {
	days := make(map[int64]bool)
	for _, t := range txs {
		if t.Amount <= 0 || !strings.EqualFold(t.Source, "login") {
			continue
		}
		if at, ok := ParseDate(t.Date); ok {
			days[epochDay(at)] = true
		}
	}

	streak := 0
	for day := epochDay(now); days[day]; day-- {
		streak++
	}
	return streak
}

// NoSpendDays is the number of days since the most recent spend. Without any
// spend it counts from the earliest transaction; without transactions it is 0.
// Transactions with unparseable dates are not considered.
func NoSpendDays(txs []models.Transaction, now time.Time) int64 {
	var lastSpend, earliest time.Time
	var haveSpend, haveAny bool
	for _, t := range txs {
		at, ok := ParseDate(t.Date)
		if !ok {
			continue
		}
		if !haveAny || at.Before(earliest) {
			earliest, haveAny = at, true
		}
		if t.Amount < 0 && (!haveSpend || !at.Before(lastSpend)) {
			lastSpend, haveSpend = at, true
		}
	}

	today := epochDay(now)
	switch {
	case haveSpend:
		return today - epochDay(lastSpend)
	case haveAny:
		return today - epochDay(earliest)
	}
	return 0
}
