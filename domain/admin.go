package domain

import "github.com/shopspring/decimal"

// AdminOverview is the aggregate view of all user accounts, shown on the
// administrative console.
type AdminOverview struct {
	TotalUsers        int             `json:"total_users"`
	TotalAvailableINR decimal.Decimal `json:"total_available_inr"`
	TotalAvailableBTC decimal.Decimal `json:"total_available_btc"`
	ActivePlans       int             `json:"active_plans"`
}

// AdminUserEvent notifies the console that some user's account changed.
// It carries no payload worth merging; the console refetches the aggregate.
type AdminUserEvent struct {
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}
