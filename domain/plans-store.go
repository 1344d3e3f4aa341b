package domain

import (
	"context"
	"sync"
	"time"

	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
)

// PlansStore owns the recurring-purchase plan slice of state.
type PlansStore struct {
	mu      sync.Mutex
	snap    Snapshot[PlanList]
	stopped bool

	syncAPI   SyncAPI
	streamAPI StreamAPI
	sub       *i.Subscription[*PlanList]
}

func NewPlansStore(syncAPI SyncAPI, streamAPI StreamAPI) *PlansStore {
	return &PlansStore{
		syncAPI:   syncAPI,
		streamAPI: streamAPI,
	}
}

// Init subscribes to plan pushes, then issues the initial pull.
func (s *PlansStore) Init(ctx context.Context) error {
	sub, err := s.streamAPI.PlanUpdates()
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

func (s *PlansStore) Refetch(ctx context.Context) error {
	plans, err := s.syncAPI.DCAPlans(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap.Fail(err)
		return err
	}
	s.snap.Replace(*plans, ProvenancePulled)
	return nil
}

func (s *PlansStore) runStreamSubscriber() {
	for plans := range s.sub.Stream {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			continue
		}
		s.snap.Replace(*plans, ProvenancePushed)
		s.mu.Unlock()
	}
}

func (s *PlansStore) Snapshot() Snapshot[PlanList] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *PlansStore) Active() []DCAPlan {
	return s.filter(func(p *DCAPlan) bool { return p.IsActive() })
}

func (s *PlansStore) Paused() []DCAPlan {
	return s.filter(func(p *DCAPlan) bool { return p.Status == PlanStatusPaused })
}

// NextExecution returns the earliest upcoming execution time across active
// plans, or the zero time when no plan is active.
func (s *PlansStore) NextExecution() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next time.Time
	for idx := range s.snap.Payload.Plans {
		plan := &s.snap.Payload.Plans[idx]
		if !plan.IsActive() {
			continue
		}
		if next.IsZero() || plan.NextExecutionAt.Before(next) {
			next = plan.NextExecutionAt
		}
	}
	return next
}

func (s *PlansStore) filter(keep func(*DCAPlan) bool) []DCAPlan {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DCAPlan, 0)
	for idx := range s.snap.Payload.Plans {
		if keep(&s.snap.Payload.Plans[idx]) {
			out = append(out, s.snap.Payload.Plans[idx])
		}
	}
	return out
}

// Clear drops the snapshot to its empty state. Used on logout.
func (s *PlansStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Clear()
}

// Stop halts the push loop and releases the subscription. Idempotent.
func (s *PlansStore) Stop() {
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
