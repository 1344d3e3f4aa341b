package domain

import (
	"context"
	"sync"

	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
)

// TransactionsStore owns the visible transaction history. The pull channel
// returns one page of history; the push channel replaces the visible list
// with a bounded recent window.
type TransactionsStore struct {
	mu      sync.Mutex
	snap    Snapshot[TransactionPage]
	stopped bool

	page  int
	limit int

	syncAPI   SyncAPI
	streamAPI StreamAPI
	sub       *i.Subscription[*TransactionWindow]
}

func NewTransactionsStore(syncAPI SyncAPI, streamAPI StreamAPI, limit int) *TransactionsStore {
	if limit <= 0 {
		limit = 50
	}
	return &TransactionsStore{
		page:      1,
		limit:     limit,
		syncAPI:   syncAPI,
		streamAPI: streamAPI,
	}
}

// Init subscribes to transaction pushes, then issues the initial pull.
func (s *TransactionsStore) Init(ctx context.Context) error {
	sub, err := s.streamAPI.TransactionUpdates()
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

func (s *TransactionsStore) Refetch(ctx context.Context) error {
	page, err := s.syncAPI.Transactions(ctx, s.page, s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap.Fail(err)
		return err
	}
	s.snap.Replace(*page, ProvenancePulled)
	return nil
}

func (s *TransactionsStore) runStreamSubscriber() {
	for window := range s.sub.Stream {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			continue
		}
		// a pushed window is bounded, so older history always remains on
		// the server
		s.snap.Replace(TransactionPage{
			Transactions: window.Transactions,
			HasMore:      true,
		}, ProvenancePushed)
		s.mu.Unlock()
	}
}

func (s *TransactionsStore) Snapshot() Snapshot[TransactionPage] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Pending returns the transactions still awaiting execution. Derived views
// are computed from the current snapshot on read, never stored, so they
// cannot drift from it.
func (s *TransactionsStore) Pending() []Transaction {
	return s.filter(func(t *Transaction) bool { return t.IsPending() })
}

func (s *TransactionsStore) Executed() []Transaction {
	return s.filter(func(t *Transaction) bool { return t.Status == TransactionStatusExecuted })
}

// DCAOnly returns the transactions produced by recurring plans.
func (s *TransactionsStore) DCAOnly() []Transaction {
	return s.filter(func(t *Transaction) bool { return t.IsDCA() })
}

func (s *TransactionsStore) filter(keep func(*Transaction) bool) []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Transaction, 0)
	for idx := range s.snap.Payload.Transactions {
		if keep(&s.snap.Payload.Transactions[idx]) {
			out = append(out, s.snap.Payload.Transactions[idx])
		}
	}
	return out
}

// Clear drops the snapshot to its empty state. Used on logout.
func (s *TransactionsStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Clear()
}

// Stop halts the push loop and releases the subscription. Idempotent.
func (s *TransactionsStore) Stop() {
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
