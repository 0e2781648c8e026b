package ledger

import (
	"slices"
	"strconv"
	"strings"

	"github.com/ifti136/android-demo/internal/models"
)

// DefaultPerPage is the history page size used when none is given.
const DefaultPerPage = 10

// AllSources is the source filter value that matches every transaction.
const AllSources = "All"

// HistoryQuery filters and pages a transaction history. Page is zero based.
type HistoryQuery struct {
	Source  string
	Search  string
	Page    int
	PerPage int
}

// HistoryPage is one page of a filtered history, newest first.
type HistoryPage struct {
	Items      []models.Transaction `json:"items"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
	Total      int                  `json:"total"`
	Sources    []string             `json:"sources"`
}

// QueryHistory filters txs by exact source and by a case-insensitive search
// over the source and amount, then returns the requested page.
func QueryHistory(txs []models.Transaction, q HistoryQuery) HistoryPage {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	var matched []models.Transaction
	for _, t := range txs {
		if q.Source != "" && q.Source != AllSources && t.Source != q.Source {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Source), search) &&
			!strings.Contains(strconv.Itoa(t.Amount), search) {
			continue
		}
		matched = append(matched, t)
	}
	matched = SortByDate(matched)
	slices.Reverse(matched)

	totalPages := max(1, (len(matched)+perPage-1)/perPage)
	page := max(0, min(q.Page, totalPages-1))
	start := min(page*perPage, len(matched))
	end := min(start+perPage, len(matched))

	return HistoryPage{
		Items:      matched[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      len(matched),
		Sources:    append([]string{AllSources}, distinctSources(txs)...),
	}
}
