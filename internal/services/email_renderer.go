package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/ifti136/android-demo/internal/models"
	"github.com/shopspring/decimal"
)

// topUsersInDigest limits the balance table in the admin digest.
const topUsersInDigest = 10

// AdminDigest is the content of the nightly admin e-mail.
type AdminDigest struct {
	Date           string
	Stats          models.AdminStats
	TopUsers       []models.AdminUserRow
	BackupsWritten int
	Failures       []string
}

// AverageCoins returns the mean balance per user, two decimal places.
func (d AdminDigest) AverageCoins() decimal.Decimal {
	if d.Stats.TotalUsers == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(d.Stats.TotalCoins)).
		Div(decimal.NewFromInt(int64(d.Stats.TotalUsers))).
		Round(2)
}

// NewSignups returns the sign-ups on the last day of the chart window.
func (d AdminDigest) NewSignups() int {
	if n := len(d.Stats.NewUsersData); n > 0 {
		return d.Stats.NewUsersData[n-1]
	}
	return 0
}

// RenderFailureSection renders the list of failed backups, or nothing.
func RenderFailureSection(failures []string) string {
	if len(failures) == 0 {
		return ""
	}

	var items strings.Builder
	for _, f := range failures {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(f))
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">⚠️ Some backups failed</h3>
			<ul style="margin-bottom: 0; padding-left: 20px;">
				%s
			</ul>
		</div>
	`, items.String())
}

func renderUserRows(rows []models.AdminUserRow) string {
	var b strings.Builder
	for i, r := range rows {
		if i == topUsersInDigest {
			break
		}
		fmt.Fprintf(&b, `<tr><td style="padding: 4px 8px;">%s</td><td style="padding: 4px 8px; text-align: right;">%s</td><td style="padding: 4px 8px; text-align: right;">%d</td></tr>`,
			html.EscapeString(r.Username),
			decimal.NewFromInt(int64(r.Balance)).StringFixed(0),
			r.TxnCount)
	}
	return b.String()
}

// RenderAdminDigest renders the full HTML body of the nightly admin e-mail.
func RenderAdminDigest(d AdminDigest) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: #c8a415; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">Coin Tracker Digest %s</h2>
				</div>
				<div style="padding: 20px;">
					%s
					<p>Users: <b>%d</b> (%d new today)</p>
					<p>Transactions: <b>%d</b></p>
					<p>Coins in circulation: <b>%d</b> (average <b>%s</b> per user)</p>
					<p>Backups written: <b>%d</b></p>
					<table style="width: 100%%; border-collapse: collapse;">
						<tr><th style="text-align: left;">User</th><th style="text-align: right;">Balance</th><th style="text-align: right;">Transactions</th></tr>
						%s
					</table>
				</div>
			</div>
		</body>
		</html>
	`,
		html.EscapeString(d.Date),
		RenderFailureSection(d.Failures),
		d.Stats.TotalUsers,
		d.NewSignups(),
		d.Stats.TotalTransactions,
		d.Stats.TotalCoins,
		d.AverageCoins().StringFixed(2),
		d.BackupsWritten,
		renderUserRows(d.TopUsers),
	)
}
