package domain

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
	"github.com/rupeex/go-rupeex-client/logger"
)

// PriceStore owns the market-rates slice of state. It pulls the initial
// snapshot once, then keeps it current from pushed price updates. Price data
// is public; the store survives logout untouched.
type PriceStore struct {
	mu      sync.Mutex
	snap    Snapshot[MarketRates]
	stopped bool

	syncAPI   SyncAPI
	streamAPI StreamAPI
	sub       *i.Subscription[*MarketRates]
}

func NewPriceStore(syncAPI SyncAPI, streamAPI StreamAPI) *PriceStore {
	return &PriceStore{
		syncAPI:   syncAPI,
		streamAPI: streamAPI,
	}
}

// Init subscribes to price pushes and issues the initial pull. Subscribing
// first means an update arriving before the pull resolves is not lost; if the
// pull response lands after a fresher push, it still overwrites, because the
// most recently arrived full view wins.
func (s *PriceStore) Init(ctx context.Context) error {
	sub, err := s.streamAPI.PriceUpdates()
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

// Refetch re-issues the pull and overwrites the snapshot whatever its current
// provenance.
func (s *PriceStore) Refetch(ctx context.Context) error {
	rates, err := s.syncAPI.MarketRates(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap.Fail(err)
		return err
	}
	s.snap.Replace(*rates, ProvenancePulled)
	return nil
}

func (s *PriceStore) runStreamSubscriber() {
	for rates := range s.sub.Stream {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			continue
		}
		s.snap.Replace(*rates, ProvenancePushed)
		s.mu.Unlock()
	}
}

func (s *PriceStore) Snapshot() Snapshot[MarketRates] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *PriceStore) BuyRate() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Payload.BuyRateINR
}

func (s *PriceStore) SellRate() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Payload.SellRateINR
}

func (s *PriceStore) Spread() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Payload.Spread()
}

// Stop halts the push loop and releases the subscription. Idempotent.
func (s *PriceStore) Stop() {
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
	logger.GetLogger().WithComponent("price-store").Debug("stopped")
}
