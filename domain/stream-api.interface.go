package domain

import (
	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
)

// StreamAPI is the push channel: typed, unsolicited full-snapshot streams
// delivered over the shared connection. Every subscriber of a stream receives
// every occurrence; the same underlying event may legitimately feed several
// independent stores.
type StreamAPI interface {
	PriceUpdates() (*i.Subscription[*MarketRates], error)
	BalanceUpdates() (*i.Subscription[*Balance], error)
	TransactionUpdates() (*i.Subscription[*TransactionWindow], error)
	PlanUpdates() (*i.Subscription[*PlanList], error)
	AdminUserUpdates() (*i.Subscription[*AdminUserEvent], error)
}
