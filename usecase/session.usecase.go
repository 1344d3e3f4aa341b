package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rupeex/go-rupeex-client/config"
	"github.com/rupeex/go-rupeex-client/domain"
	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
	"github.com/rupeex/go-rupeex-client/logger"
	"github.com/rupeex/go-rupeex-client/provider"
)

const resyncTimeout = 30 * time.Second

type sessionAuthenticator interface {
	EnsureAuthenticated(ctx context.Context, token string) error
	Invalidate()
	IsAuthenticated() bool
}

type tokenSink interface {
	SetToken(token string)
}

type stateSource interface {
	SubscribeState() *i.Subscription[i.ConnState]
}

// Session ties the stores to one user session: login performs the handshake
// and brings the authenticated stores up, logout clears them, and a completed
// reconnect re-arms authentication and refetches everything so silently
// missed push events cannot leave stale state behind.
type Session struct {
	auth   sessionAuthenticator
	tokens tokenSink
	states stateSource

	Price        *domain.PriceStore
	Balance      *domain.BalanceStore
	Transactions *domain.TransactionsStore
	Plans        *domain.PlansStore

	mu                sync.Mutex
	token             string
	authenticated     bool
	storesInitialized bool

	stateSub *i.Subscription[i.ConnState]
	stopOnce sync.Once
}

func NewSession(cm *provider.ConnectionManager, conf *config.Config) *Session {
	return newSession(
		cm.Authenticator,
		cm.SyncAPI,
		cm.StreamClient,
		cm.SyncAPI,
		cm.StreamAPI,
		conf.TransactionsPageLimit,
	)
}

func newSession(
	auth sessionAuthenticator,
	tokens tokenSink,
	states stateSource,
	syncAPI domain.SyncAPI,
	streamAPI domain.StreamAPI,
	txLimit int,
) *Session {
	return &Session{
		auth:         auth,
		tokens:       tokens,
		states:       states,
		Price:        domain.NewPriceStore(syncAPI, streamAPI),
		Balance:      domain.NewBalanceStore(syncAPI, streamAPI),
		Transactions: domain.NewTransactionsStore(syncAPI, streamAPI, txLimit),
		Plans:        domain.NewPlansStore(syncAPI, streamAPI),
	}
}

// Start initializes the public price store and begins watching the
// connection. Authenticated stores come up on Login.
func (s *Session) Start(ctx context.Context) error {
	s.stateSub = s.states.SubscribeState()
	go s.watchConnection()
	return s.Price.Init(ctx)
}

// Login performs the credential handshake and initializes the authenticated
// stores. Repeated logins refetch instead of re-subscribing. A failed store
// pull is not fatal: it is recorded on the snapshot and retried on demand.
func (s *Session) Login(ctx context.Context, token string) error {
	log := logger.GetLogger().WithComponent("session")

	s.tokens.SetToken(token)
	if err := s.auth.EnsureAuthenticated(ctx, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.authenticated = true
	initialized := s.storesInitialized
	s.storesInitialized = true
	s.mu.Unlock()

	if initialized {
		s.refetchAuthenticated(ctx)
		return nil
	}

	if err := s.Balance.Init(ctx); err != nil {
		log.WithError(err).Warn("initial balance pull failed")
	}
	if err := s.Transactions.Init(ctx); err != nil {
		log.WithError(err).Warn("initial transactions pull failed")
	}
	if err := s.Plans.Init(ctx); err != nil {
		log.WithError(err).Warn("initial plans pull failed")
	}
	return nil
}

// Logout invalidates the handshake and clears every authenticated snapshot.
// The price store keeps showing public market data.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.authenticated = false
	s.mu.Unlock()

	s.auth.Invalidate()
	s.tokens.SetToken("")

	s.Balance.Clear()
	s.Transactions.Clear()
	s.Plans.Clear()
}

func (s *Session) IsAuthenticated() bool {
	return s.auth.IsAuthenticated()
}

func (s *Session) watchConnection() {
	sawDrop := false
	for state := range s.stateSub.Stream {
		switch state {
		case i.ConnStateReconnecting, i.ConnStateDisconnected:
			sawDrop = true
		case i.ConnStateConnected:
			if !sawDrop {
				continue
			}
			sawDrop = false
			s.resync()
		}
	}
}

// resync runs after a reconnect completes. Push events may have been missed
// while the link was down, so the handshake is re-run for the fresh
// connection and every initialized store is refetched.
func (s *Session) resync() {
	log := logger.GetLogger().WithComponent("session")

	ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
	defer cancel()

	s.mu.Lock()
	token := s.token
	authenticated := s.authenticated
	s.mu.Unlock()

	if token != "" {
		if err := s.auth.EnsureAuthenticated(ctx, token); err != nil {
			log.WithError(err).Warn("re-authentication after reconnect failed")
		}
	}

	if err := s.Price.Refetch(ctx); err != nil {
		log.WithError(err).Warn("price refetch after reconnect failed")
	}
	if authenticated {
		s.refetchAuthenticated(ctx)
	}
}

func (s *Session) refetchAuthenticated(ctx context.Context) {
	log := logger.GetLogger().WithComponent("session")

	if err := s.Balance.Refetch(ctx); err != nil {
		log.WithError(err).Warn("balance refetch failed")
	}
	if err := s.Transactions.Refetch(ctx); err != nil {
		log.WithError(err).Warn("transactions refetch failed")
	}
	if err := s.Plans.Refetch(ctx); err != nil {
		log.WithError(err).Warn("plans refetch failed")
	}
}

func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.stateSub != nil {
			s.stateSub.Unsubscribe()
		}
		s.Price.Stop()
		s.Balance.Stop()
		s.Transactions.Stop()
		s.Plans.Stop()
	})
}
