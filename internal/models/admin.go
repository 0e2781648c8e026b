package models

// AdminStats summarizes all users for the admin dashboard.
type AdminStats struct {
	TotalUsers        int      `json:"totalUsers"`
	TotalCoins        int      `json:"totalCoins"`
	TotalTransactions int      `json:"totalTransactions"`
	Labels            []string `json:"labels"`       // last 30 UTC days, oldest first
	NewUsersData      []int    `json:"newUsersData"` // sign-ups per label
}

// AdminUserRow is one line of the admin user list.
type AdminUserRow struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Balance     int    `json:"balance"`
	TxnCount    int    `json:"txnCount"`
	CreatedAt   string `json:"createdAt"`
	LastUpdated string `json:"lastUpdated"`
}
