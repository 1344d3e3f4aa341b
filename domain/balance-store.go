package domain

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
)

// BalanceStore owns the account-balance slice of state. Pushed updates carry
// the complete balance, so every application is a wholesale replacement.
type BalanceStore struct {
	mu      sync.Mutex
	snap    Snapshot[Balance]
	stopped bool

	syncAPI   SyncAPI
	streamAPI StreamAPI
	sub       *i.Subscription[*Balance]
}

func NewBalanceStore(syncAPI SyncAPI, streamAPI StreamAPI) *BalanceStore {
	return &BalanceStore{
		syncAPI:   syncAPI,
		streamAPI: streamAPI,
	}
}

// Init subscribes to balance pushes, then issues the initial pull.
func (s *BalanceStore) Init(ctx context.Context) error {
	sub, err := s.streamAPI.BalanceUpdates()
	if err != nil {
		return err
	}
	s.sub = sub
	go s.runStreamSubscriber()

	s.mu.Lock()
	s.snap.Loading = true
	s.mu.Unlock()

	return s.Refetch(ctx)
}

// Refetch re-issues the pull. Called by consumers after a local mutating
// action whose effect is not guaranteed to arrive via push in bounded time.
func (s *BalanceStore) Refetch(ctx context.Context) error {
	balance, err := s.syncAPI.Balance(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap.Fail(err)
		return err
	}
	s.snap.Replace(*balance, ProvenancePulled)
	return nil
}

func (s *BalanceStore) runStreamSubscriber() {
	for balance := range s.sub.Stream {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			continue
		}
		s.snap.Replace(*balance, ProvenancePushed)
		s.mu.Unlock()
	}
}

func (s *BalanceStore) Snapshot() Snapshot[Balance] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *BalanceStore) TotalINR() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Payload.TotalINR()
}

func (s *BalanceStore) TotalBTC() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Payload.TotalBTC()
}

func (s *BalanceStore) HasDebt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Payload.HasDebt()
}

// Clear drops the snapshot to its empty state so stale account data is not
// left visible after logout.
func (s *BalanceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Clear()
}

// Stop halts the push loop and releases the subscription. Idempotent.
func (s *BalanceStore) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if s.sub != nil {
		s.sub.Unsubscribe()
	}
}
