package models

import "github.com/shopspring/decimal"

// DashboardStats are the earnings sums for the cumulative time windows.
type DashboardStats struct {
	Today int `json:"today"`
	Week  int `json:"week"`
	Month int `json:"month"`
}

// TimelinePoint is the balance right after the transaction dated Date.
type TimelinePoint struct {
	Date    string `json:"date"`
	Balance int    `json:"balance"`
}

// AnalyticsSnapshot aggregates earnings and spending for a profile.
type AnalyticsSnapshot struct {
	TotalEarnings        int                 `json:"totalEarnings"`
	TotalSpending        int                 `json:"totalSpending"` // positive magnitude
	NetBalance           int                 `json:"netBalance"`
	EarningsBreakdown    map[string]int      `json:"earningsBreakdown"`
	SpendingBreakdown    map[string]int      `json:"spendingBreakdown"`
	Timeline             []TimelinePoint     `json:"timeline"`
	AverageDailyEarnings decimal.NullDecimal `json:"averageDailyEarnings"`
}

// Achievement is an earned badge.
type Achievement struct {
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"desc"`
}

// ProfileEnvelope is the fully derived view of one profile. It is never
// persisted as-is.
type ProfileEnvelope struct {
	Profile        string            `json:"profile"`
	Transactions   []Transaction     `json:"transactions"`
	Settings       Settings          `json:"settings"`
	Balance        int               `json:"balance"`
	Goal           int               `json:"goal"`
	Progress       int               `json:"progress"`
	EstimatedDays  *int              `json:"estimatedDays"` // nil when there is no basis for an estimate
	DashboardStats DashboardStats    `json:"dashboardStats"`
	Analytics      AnalyticsSnapshot `json:"analytics"`
	Achievements   []Achievement     `json:"achievements"`
}
