// Package ledger derives balances, analytics and achievements from a
// profile's transactions. Every function is pure; "now" is always passed in.
package ledger

import "github.com/ifti136/android-demo/internal/models"

// Reconcile sorts txs by date and recomputes each PreviousBalance as the sum
// of all earlier amounts. Stored PreviousBalance values are ignored.
func Reconcile(txs []models.Transaction) []models.Transaction {
	sorted := SortByDate(txs)
	running := 0
	for i := range sorted {
		sorted[i].PreviousBalance = running
		running += sorted[i].Amount
	}
	return sorted
}

// Balance is the sum of all amounts.
func Balance(txs []models.Transaction) int {
	total := 0
	for _, t := range txs {
		total += t.Amount
	}
	return total
}
