package domain

import "context"

// SyncAPI is the pull channel: conventional request/response calls that each
// return the full current state of one domain.
type SyncAPI interface {
	MarketRates(ctx context.Context) (*MarketRates, error)
	Balance(ctx context.Context) (*Balance, error)
	Transactions(ctx context.Context, page, limit int) (*TransactionPage, error)
	DCAPlans(ctx context.Context) (*PlanList, error)
	AdminOverview(ctx context.Context) (*AdminOverview, error)
}
