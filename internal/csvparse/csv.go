// Package csvparse reads and writes transactions as CSV with the header
// Date,Amount,Source,ID.
package csvparse

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ifti136/android-demo/internal/ledger"
	"github.com/ifti136/android-demo/internal/models"
	"github.com/shopspring/decimal"
)

// Header is the column order written by WriteCSV.
var Header = []string{"Date", "Amount", "Source", "ID"}

// ParseCSV parses transactions from a CSV string. Columns are matched by
// header name, case-insensitively. It returns the valid transactions and an
// error message for each skipped row.
func ParseCSV(content string) ([]models.Transaction, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.Transaction{}, nil
	}

	headers := parseHeaders(records[0])
	for _, required := range []string{"date", "amount", "source"} {
		if _, ok := headers[required]; !ok {
			return nil, []string{fmt.Sprintf("Missing %s column", required)}
		}
	}

	transactions := []models.Transaction{}
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if isBlank(record) {
			continue
		}

		row := make(map[string]string, len(headers))
		for name, j := range headers {
			if j < len(record) {
				row[name] = strings.TrimSpace(record[j])
			}
		}

		t, err := mapToTransaction(row)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		transactions = append(transactions, t)
	}

	return transactions, errors
}

func parseHeaders(row []string) map[string]int {
	headers := make(map[string]int, len(row))
	for i, h := range row {
		headers[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return headers
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func mapToTransaction(row map[string]string) (models.Transaction, error) {
	date := row["date"]
	if date == "" {
		return models.Transaction{}, fmt.Errorf("missing Date")
	}
	if _, ok := ledger.ParseDate(date); !ok {
		return models.Transaction{}, fmt.Errorf("invalid Date format: %s", date)
	}

	source := row["source"]
	if source == "" {
		return models.Transaction{}, fmt.Errorf("missing Source")
	}

	amountStr := row["amount"]
	if amountStr == "" {
		return models.Transaction{}, fmt.Errorf("missing Amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil || !amount.IsInteger() || !amount.Equal(decimal.NewFromInt(amount.IntPart())) {
		return models.Transaction{}, fmt.Errorf("invalid Amount: %s", amountStr)
	}

	id := row["id"]
	if id == "" {
		id = uuid.NewString()
	}

	return models.Transaction{
		ID:     id,
		Date:   date,
		Amount: int(amount.IntPart()),
		Source: source,
	}, nil
}

// WriteCSV renders transactions with a header row.
func WriteCSV(transactions []models.Transaction) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range transactions {
		record := []string{t.Date, fmt.Sprint(t.Amount), t.Source, t.ID}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return b.String(), nil
}
