package ledger

import (
	"slices"
	"time"

	"github.com/ifti136/android-demo/internal/models"
)

// Timestamps without an offset are read as UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a transaction date. Fractional seconds are accepted by
// every layout.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// epochDay is the number of whole UTC calendar days since 1970-01-01.
func epochDay(t time.Time) int64 {
	return startOfDay(t).Unix() / 86400
}

type datedTransaction struct {
	tx     models.Transaction
	at     time.Time
	parsed bool
}

func compareDated(a, b datedTransaction) int {
	switch {
	case a.parsed && b.parsed:
		return a.at.Compare(b.at)
	case a.parsed:
		return -1
	case b.parsed:
		return 1
	}
	switch {
	case a.tx.Date < b.tx.Date:
		return -1
	case a.tx.Date > b.tx.Date:
		return 1
	}
	return 0
}

// SortByDate returns a copy of txs in ascending date order. Ties keep their
// input order and unparseable dates sort after all parseable ones.
func SortByDate(txs []models.Transaction) []models.Transaction {
	dated := make([]datedTransaction, len(txs))
	for i, t := range txs {
		at, ok := ParseDate(t.Date)
		dated[i] = datedTransaction{tx: t, at: at, parsed: ok}
	}
	slices.SortStableFunc(dated, compareDated)

	out := make([]models.Transaction, len(dated))
	for i, d := range dated {
		out[i] = d.tx
	}
	return out
}
