package csvparse

import (
	"testing"

	"github.com/ifti136/android-demo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Valid(t *testing.T) {
	content := `Date,Amount,Source,ID
2026-10-01T09:00:00Z,5000,Salary,a1
2026-10-02,-100,Food,`

	transactions, errors := ParseCSV(content)

	require.Empty(t, errors)
	require.Len(t, transactions, 2)

	assert.Equal(t, models.Transaction{ID: "a1", Date: "2026-10-01T09:00:00Z", Amount: 5000, Source: "Salary"}, transactions[0])
	assert.Equal(t, -100, transactions[1].Amount)
	assert.Equal(t, "Food", transactions[1].Source)
	assert.NotEmpty(t, transactions[1].ID)
}

func TestParseCSV_WhitespaceAndColumnOrder(t *testing.T) {
	content := ` source , AMOUNT , date
 Login , 50 , 2026-10-03 `

	transactions, errors := ParseCSV(content)

	require.Empty(t, errors)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Login", transactions[0].Source)
	assert.Equal(t, 50, transactions[0].Amount)
	assert.Equal(t, "2026-10-03", transactions[0].Date)
}

func TestParseCSV_RowErrors(t *testing.T) {
	content := `Date,Amount,Source
,10,Salary
2026-10-01,10,
2026-10-01,12.5,Salary
2026-10-01,abc,Salary
tomorrow,10,Salary
2026-10-01,7.0,Bonus

2026-10-02,3,Login`

	transactions, errors := ParseCSV(content)

	assert.Equal(t, []string{
		"Row 2: missing Date",
		"Row 3: missing Source",
		"Row 4: invalid Amount: 12.5",
		"Row 5: invalid Amount: abc",
		"Row 6: invalid Date format: tomorrow",
	}, errors)
	require.Len(t, transactions, 2)
	assert.Equal(t, 7, transactions[0].Amount)
	assert.Equal(t, "Login", transactions[1].Source)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	transactions, errors := ParseCSV("Date,Source\n2026-10-01,Salary")

	assert.Nil(t, transactions)
	assert.Equal(t, []string{"Missing amount column"}, errors)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	transactions, errors := ParseCSV("Date,Amount,Source,ID\n")

	assert.Empty(t, transactions)
	assert.Empty(t, errors)
}

func TestParseCSV_Malformed(t *testing.T) {
	_, errors := ParseCSV("Date,Amount,Source\n\"unterminated,1,x")

	require.Len(t, errors, 1)
	assert.Contains(t, errors[0], "Failed to read CSV")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	in := []models.Transaction{
		{ID: "a", Date: "2026-10-01T09:00:00Z", Amount: 5000, Source: "Salary, monthly"},
		{ID: "b", Date: "2026-10-02", Amount: -100, Source: "Food"},
	}

	out, err := WriteCSV(in)
	require.NoError(t, err)
	assert.Contains(t, out, "Date,Amount,Source,ID\n")
	assert.Contains(t, out, `"Salary, monthly"`)

	parsed, errors := ParseCSV(out)
	require.Empty(t, errors)
	assert.Equal(t, in, parsed)
}
