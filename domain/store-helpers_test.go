package domain

import (
	"context"
	"sync"

	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
)

// fakeSyncAPI serves canned pull responses and counts calls per endpoint.
// When gate is set, every call blocks until the gate closes, which lets tests
// defer a pull resolution past a push arrival.
type fakeSyncAPI struct {
	mu       sync.Mutex
	rates    MarketRates
	balance  Balance
	txPage   TransactionPage
	plans    PlanList
	overview AdminOverview
	err      error
	calls    map[string]int

	gate chan struct{}
}

func newFakeSyncAPI() *fakeSyncAPI {
	return &fakeSyncAPI{calls: make(map[string]int)}
}

func (f *fakeSyncAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeSyncAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSyncAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSyncAPI) waitGate() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeSyncAPI) MarketRates(ctx context.Context) (*MarketRates, error) {
	f.record("market-rates")
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.rates
	return &out, nil
}

func (f *fakeSyncAPI) Balance(ctx context.Context) (*Balance, error) {
	f.record("balance")
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.balance
	return &out, nil
}

func (f *fakeSyncAPI) Transactions(ctx context.Context, page, limit int) (*TransactionPage, error) {
	f.record("transactions")
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.txPage
	return &out, nil
}

func (f *fakeSyncAPI) DCAPlans(ctx context.Context) (*PlanList, error) {
	f.record("dca-plans")
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.plans
	return &out, nil
}

func (f *fakeSyncAPI) AdminOverview(ctx context.Context) (*AdminOverview, error) {
	f.record("admin-overview")
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.overview
	return &out, nil
}

// fakeStreamAPI exposes push channels the test feeds directly.
type fakeStreamAPI struct {
	priceCh   chan *MarketRates
	balanceCh chan *Balance
	txCh      chan *TransactionWindow
	planCh    chan *PlanList
	adminCh   chan *AdminUserEvent

	mu           sync.Mutex
	unsubscribed map[string]int
}

func newFakeStreamAPI() *fakeStreamAPI {
	return &fakeStreamAPI{
		priceCh:      make(chan *MarketRates, 8),
		balanceCh:    make(chan *Balance, 8),
		txCh:         make(chan *TransactionWindow, 8),
		planCh:       make(chan *PlanList, 8),
		adminCh:      make(chan *AdminUserEvent, 8),
		unsubscribed: make(map[string]int),
	}
}

func (f *fakeStreamAPI) markUnsubscribed(topic string) {
	f.mu.Lock()
	f.unsubscribed[topic]++
	f.mu.Unlock()
}

func (f *fakeStreamAPI) unsubscribeCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed[topic]
}

func (f *fakeStreamAPI) PriceUpdates() (*i.Subscription[*MarketRates], error) {
	return &i.Subscription[*MarketRates]{
		Stream:      f.priceCh,
		Topic:       "btc_price_update",
		Unsubscribe: func() { f.markUnsubscribed("btc_price_update") },
	}, nil
}

func (f *fakeStreamAPI) BalanceUpdates() (*i.Subscription[*Balance], error) {
	return &i.Subscription[*Balance]{
		Stream:      f.balanceCh,
		Topic:       "user_balance_update",
		Unsubscribe: func() { f.markUnsubscribed("user_balance_update") },
	}, nil
}

func (f *fakeStreamAPI) TransactionUpdates() (*i.Subscription[*TransactionWindow], error) {
	return &i.Subscription[*TransactionWindow]{
		Stream:      f.txCh,
		Topic:       "user_transaction_update",
		Unsubscribe: func() { f.markUnsubscribed("user_transaction_update") },
	}, nil
}

func (f *fakeStreamAPI) PlanUpdates() (*i.Subscription[*PlanList], error) {
	return &i.Subscription[*PlanList]{
		Stream:      f.planCh,
		Topic:       "user_dca_plans_update",
		Unsubscribe: func() { f.markUnsubscribed("user_dca_plans_update") },
	}, nil
}

func (f *fakeStreamAPI) AdminUserUpdates() (*i.Subscription[*AdminUserEvent], error) {
	return &i.Subscription[*AdminUserEvent]{
		Stream:      f.adminCh,
		Topic:       "admin_user_update",
		Unsubscribe: func() { f.markUnsubscribed("admin_user_update") },
	}, nil
}
