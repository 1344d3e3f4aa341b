package rupeex

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
	promclient "github.com/rupeex/go-rupeex-client/infrastructure/prometheus"
	"github.com/rupeex/go-rupeex-client/logger"
)

const (
	EventAuthenticate          = "authenticate"
	EventAuthenticationSuccess = "authentication_success"
	EventAuthenticationError   = "authentication_error"

	defaultHandshakeTimeout = 10 * time.Second
)

var (
	ErrNotConnected     = errors.New("no live connection")
	ErrHandshakeTimeout = errors.New("authentication handshake timed out")
	ErrConnectionLost   = errors.New("connection lost during handshake")
)

// StreamTransport is the slice of the stream client the authenticator needs.
type StreamTransport interface {
	Subscribe(topic string) *i.Subscription[[]byte]
	SubscribeState() *i.Subscription[i.ConnState]
	Emit(event string, payload any) error
	SessionID() string
}

type authRequest struct {
	Token string `json:"token"`
}

type authErrorPayload struct {
	Reason string `json:"reason"`
}

// Authenticator performs the credential handshake exactly once per physical
// connection, however many features request it concurrently. Without it every
// store would re-emit the handshake on each reconnect, N times over.
type Authenticator struct {
	transport StreamTransport
	timeout   time.Duration

	mu          sync.Mutex
	sessionID   string
	succeeded   bool
	pendingDone chan struct{} // non-nil while a handshake is in flight
	lastErr     error

	stateSub *i.Subscription[i.ConnState]
	stopOnce sync.Once
}

func NewAuthenticator(transport StreamTransport) *Authenticator {
	a := &Authenticator{
		transport: transport,
		timeout:   defaultHandshakeTimeout,
		stateSub:  transport.SubscribeState(),
	}
	go a.watchConnection()
	return a
}

// watchConnection forgets the handshake result as soon as the physical
// connection is lost; a fresh connection requires a fresh handshake.
func (a *Authenticator) watchConnection() {
	for state := range a.stateSub.Stream {
		if state == i.ConnStateReconnecting || state == i.ConnStateDisconnected {
			a.mu.Lock()
			a.invalidateLocked(ErrConnectionLost)
			a.mu.Unlock()
		}
	}
}

// EnsureAuthenticated performs the handshake for the current connection at
// most once. The check of "already pending or succeeded" and the set of
// "pending" happen under one lock, so concurrent callers cannot both emit;
// later callers simply await the shared result.
func (a *Authenticator) EnsureAuthenticated(ctx context.Context, token string) error {
	a.mu.Lock()
	session := a.transport.SessionID()
	if session == "" {
		a.mu.Unlock()
		return ErrNotConnected
	}
	if a.sessionID != session {
		// remembered result belongs to a previous physical connection
		a.invalidateLocked(ErrConnectionLost)
	}

	if a.succeeded {
		a.mu.Unlock()
		return nil
	}
	if a.pendingDone != nil {
		wait := a.pendingDone
		a.mu.Unlock()
		select {
		case <-wait:
			return a.result()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	done := make(chan struct{})
	a.pendingDone = done
	a.sessionID = session
	a.mu.Unlock()

	return a.handshake(ctx, token, done)
}

func (a *Authenticator) handshake(ctx context.Context, token string, done chan struct{}) error {
	successSub := a.transport.Subscribe(EventAuthenticationSuccess)
	defer successSub.Unsubscribe()
	errorSub := a.transport.Subscribe(EventAuthenticationError)
	defer errorSub.Unsubscribe()

	if err := a.transport.Emit(EventAuthenticate, authRequest{Token: token}); err != nil {
		a.resolve(done, errors.Wrap(err, "failed to emit handshake"))
		return a.result()
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case <-successSub.Stream:
		a.resolve(done, nil)
	case raw := <-errorSub.Stream:
		payload := authErrorPayload{}
		_ = json.Unmarshal(raw, &payload)
		if payload.Reason == "" {
			payload.Reason = "authentication rejected"
		}
		a.resolve(done, errors.New(payload.Reason))
	case <-timer.C:
		a.resolve(done, ErrHandshakeTimeout)
	case <-ctx.Done():
		a.resolve(done, ctx.Err())
	case <-done:
		// invalidated by a connection transition while waiting
	}

	return a.result()
}

// resolve settles the in-flight handshake. On failure the guard resets, so a
// later call (for instance after the next reconnect) can retry; failure is
// never fatal to the application.
func (a *Authenticator) resolve(done chan struct{}, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pendingDone != done {
		// already invalidated by a connection transition
		return
	}
	a.pendingDone = nil
	a.lastErr = err
	a.succeeded = err == nil

	if err == nil {
		promclient.HandshakesTotal.WithLabelValues("success").Inc()
	} else {
		promclient.HandshakesTotal.WithLabelValues("failure").Inc()
		logger.GetLogger().WithComponent("authenticator").WithError(err).Warn("handshake failed")
	}
	close(done)
}

func (a *Authenticator) result() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.succeeded {
		return nil
	}
	return a.lastErr
}

func (a *Authenticator) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.succeeded && a.sessionID == a.transport.SessionID()
}

// Invalidate clears the remembered result. Used on logout.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invalidateLocked(errors.New("session ended"))
}

func (a *Authenticator) invalidateLocked(reason error) {
	a.succeeded = false
	a.sessionID = ""
	if a.pendingDone != nil {
		a.lastErr = reason
		close(a.pendingDone)
		a.pendingDone = nil
	}
}

func (a *Authenticator) Stop() {
	a.stopOnce.Do(func() {
		a.stateSub.Unsubscribe()
	})
}
