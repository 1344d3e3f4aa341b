package domain

import (
	"context"
	"sync"

	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
	"github.com/rupeex/go-rupeex-client/logger"
)

// AdminAggregateStore owns the administrative aggregate view. It listens to
// both admin events and user balance updates: the balance topic is already
// consumed by BalanceStore, and registering it a second time here is
// intentional fan-out, not a duplicate to be deduplicated. The events carry
// per-user payloads the aggregate cannot use directly, so each one triggers a
// refetch of the aggregate instead.
type AdminAggregateStore struct {
	mu      sync.Mutex
	snap    Snapshot[AdminOverview]
	stopped bool

	syncAPI   SyncAPI
	streamAPI StreamAPI

	balanceSub *i.Subscription[*Balance]
	adminSub   *i.Subscription[*AdminUserEvent]
}

func NewAdminAggregateStore(syncAPI SyncAPI, streamAPI StreamAPI) *AdminAggregateStore {
	return &AdminAggregateStore{
		syncAPI:   syncAPI,
		streamAPI: streamAPI,
	}
}

func (s *AdminAggregateStore) Init(ctx context.Context) error {
	balanceSub, err := s.streamAPI.BalanceUpdates()
	if err != nil {
		return err
	}
	adminSub, err := s.streamAPI.AdminUserUpdates()
	if err != nil {
		balanceSub.Unsubscribe()
		return err
	}
	s.balanceSub = balanceSub
	s.adminSub = adminSub
	go s.runStreamSubscriber()

	s.mu.Lock()
	s.snap.Loading = true
	s.mu.Unlock()

	return s.Refetch(ctx)
}

func (s *AdminAggregateStore) Refetch(ctx context.Context) error {
	overview, err := s.syncAPI.AdminOverview(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap.Fail(err)
		return err
	}
	s.snap.Replace(*overview, ProvenancePulled)
	return nil
}

func (s *AdminAggregateStore) runStreamSubscriber() {
	log := logger.GetLogger().WithComponent("admin-store")

	balanceStream := s.balanceSub.Stream
	adminStream := s.adminSub.Stream

	for balanceStream != nil || adminStream != nil {
		select {
		case _, ok := <-balanceStream:
			if !ok {
				balanceStream = nil
				continue
			}
		case _, ok := <-adminStream:
			if !ok {
				adminStream = nil
				continue
			}
		}

		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			continue
		}

		if err := s.Refetch(context.Background()); err != nil {
			log.WithError(err).Warn("aggregate refetch after push event failed")
		}
	}
}

func (s *AdminAggregateStore) Snapshot() Snapshot[AdminOverview] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Clear drops the snapshot to its empty state. Used on logout.
func (s *AdminAggregateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Clear()
}

// Stop halts the push loop and releases both subscriptions. Idempotent.
func (s *AdminAggregateStore) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	if s.balanceSub != nil {
		s.balanceSub.Unsubscribe()
	}
	if s.adminSub != nil {
		s.adminSub.Unsubscribe()
	}
}
