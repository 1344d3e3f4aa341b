package usecase

import (
	"context"
	"sync"

	"github.com/rupeex/go-rupeex-client/domain"
	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
)

type fakeRefetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRefetcher) Refetch(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeRefetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAuthenticator struct {
	mu          sync.Mutex
	err         error
	ensureCalls int
	invalidated int
	tokens      []string
}

func (f *fakeAuthenticator) EnsureAuthenticated(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	f.tokens = append(f.tokens, token)
	return f.err
}

func (f *fakeAuthenticator) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func (f *fakeAuthenticator) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err == nil && f.ensureCalls > f.invalidated
}

func (f *fakeAuthenticator) ensureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ensureCalls
}

type fakeTokenSink struct {
	mu     sync.Mutex
	tokens []string
}

func (f *fakeTokenSink) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeTokenSink) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

type fakeStateSource struct {
	ch chan i.ConnState
}

func newFakeStateSource() *fakeStateSource {
	return &fakeStateSource{ch: make(chan i.ConnState, 8)}
}

func (f *fakeStateSource) SubscribeState() *i.Subscription[i.ConnState] {
	return &i.Subscription[i.ConnState]{
		Stream:      f.ch,
		Topic:       "connection-state",
		Unsubscribe: func() {},
	}
}

// fakeSessionSyncAPI counts pulls per endpoint and serves empty payloads.
type fakeSessionSyncAPI struct {
	mu    sync.Mutex
	calls map[string]int
}

func newFakeSessionSyncAPI() *fakeSessionSyncAPI {
	return &fakeSessionSyncAPI{calls: make(map[string]int)}
}

func (f *fakeSessionSyncAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeSessionSyncAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSessionSyncAPI) MarketRates(ctx context.Context) (*domain.MarketRates, error) {
	f.record("market-rates")
	return &domain.MarketRates{}, nil
}

func (f *fakeSessionSyncAPI) Balance(ctx context.Context) (*domain.Balance, error) {
	f.record("balance")
	return &domain.Balance{}, nil
}

func (f *fakeSessionSyncAPI) Transactions(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
	f.record("transactions")
	return &domain.TransactionPage{
		Transactions: []domain.Transaction{{ID: "t1", Status: domain.TransactionStatusExecuted}},
	}, nil
}

func (f *fakeSessionSyncAPI) DCAPlans(ctx context.Context) (*domain.PlanList, error) {
	f.record("dca-plans")
	return &domain.PlanList{TotalPlans: 1}, nil
}

func (f *fakeSessionSyncAPI) AdminOverview(ctx context.Context) (*domain.AdminOverview, error) {
	f.record("admin-overview")
	return &domain.AdminOverview{}, nil
}

// fakeSessionStreamAPI hands out inert subscriptions; session tests drive the
// stores through pulls only.
type fakeSessionStreamAPI struct{}

func (f *fakeSessionStreamAPI) PriceUpdates() (*i.Subscription[*domain.MarketRates], error) {
	return inertSubscription[*domain.MarketRates]("btc_price_update"), nil
}

func (f *fakeSessionStreamAPI) BalanceUpdates() (*i.Subscription[*domain.Balance], error) {
	return inertSubscription[*domain.Balance]("user_balance_update"), nil
}

func (f *fakeSessionStreamAPI) TransactionUpdates() (*i.Subscription[*domain.TransactionWindow], error) {
	return inertSubscription[*domain.TransactionWindow]("user_transaction_update"), nil
}

func (f *fakeSessionStreamAPI) PlanUpdates() (*i.Subscription[*domain.PlanList], error) {
	return inertSubscription[*domain.PlanList]("user_dca_plans_update"), nil
}

func (f *fakeSessionStreamAPI) AdminUserUpdates() (*i.Subscription[*domain.AdminUserEvent], error) {
	return inertSubscription[*domain.AdminUserEvent]("admin_user_update"), nil
}

func inertSubscription[T any](topic string) *i.Subscription[T] {
	ch := make(chan T)
	return &i.Subscription[T]{
		Stream:      ch,
		Topic:       topic,
		Unsubscribe: func() { close(ch) },
	}
}
