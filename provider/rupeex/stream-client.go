package rupeex

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/rupeex/go-rupeex-client/config"
	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
	"github.com/rupeex/go-rupeex-client/helpers"
	promclient "github.com/rupeex/go-rupeex-client/infrastructure/prometheus"
	"github.com/rupeex/go-rupeex-client/logger"
)

const (
	handshakeTimeout        = 5 * time.Second
	defaultSubscriberBuffer = 16
	defaultMaxRetries       = 20
)

// Envelope is the wire frame in both directions: a named event plus its raw
// payload. Outbound frames additionally carry a request id.
type Envelope struct {
	ReqID string          `json:"id,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type subscriberEntry struct {
	id int
	ch chan []byte
}

type stateSubscriber struct {
	id int
	ch chan i.ConnState
}

// StreamClient owns the single physical stream connection of the whole
// application session. It multiplexes named events to any number of
// subscribers, queues outbound emits while the link is down and reconnects
// with capped exponential backoff. Consumers never see transport errors, only
// the lifecycle state.
type StreamClient struct {
	endpoint   string
	maxRetries int

	mu            sync.Mutex
	conn          *websocket.Conn
	state         i.ConnState
	sessionID     string
	running       bool
	subscriptions map[string][]*subscriberEntry
	stateSubs     []*stateSubscriber
	nextID        int
	outbound      deque.Deque[[]byte]

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once

	log *logger.Log
}

func NewStreamClient(endpoint string) *StreamClient {
	return &StreamClient{
		endpoint:      endpoint,
		maxRetries:    defaultMaxRetries,
		state:         i.ConnStateDisconnected,
		subscriptions: make(map[string][]*subscriberEntry),
		done:          make(chan struct{}),
		log:           logger.GetLogger(),
	}
}

// Connect is idempotent: the first call starts the dial loop, later calls
// while it is running are no-ops. After the retry policy was exhausted a new
// call starts the loop again.
func (c *StreamClient) Connect() error {
	select {
	case <-c.done:
		return errors.New("stream client is closed")
	default:
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.setStateLocked(i.ConnStateConnecting)
	c.mu.Unlock()

	go c.runLoop()
	return nil
}

func (c *StreamClient) State() i.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID identifies the current physical connection; a reconnect yields a
// fresh id. Empty until the first connection is established.
func (c *StreamClient) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Subscribe registers for every future occurrence of the named event. Each
// subscriber of a topic receives each message; the handle must be released
// with Unsubscribe on teardown.
func (c *StreamClient) Subscribe(topic string) *i.Subscription[[]byte] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	entry := &subscriberEntry{
		id: c.nextID,
		ch: make(chan []byte, defaultSubscriberBuffer),
	}
	c.subscriptions[topic] = append(c.subscriptions[topic], entry)

	id := entry.id
	return &i.Subscription[[]byte]{
		Stream:      entry.ch,
		Topic:       topic,
		Unsubscribe: func() { c.unsubscribe(topic, id) },
	}
}

func (c *StreamClient) unsubscribe(topic string, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.subscriptions[topic]
	for idx, entry := range entries {
		if entry.id == id {
			c.subscriptions[topic] = append(entries[:idx], entries[idx+1:]...)
			close(entry.ch)
			break
		}
	}
	if len(c.subscriptions[topic]) == 0 {
		delete(c.subscriptions, topic)
	}
}

// SubscribeState delivers every lifecycle transition of the connection.
func (c *StreamClient) SubscribeState() *i.Subscription[i.ConnState] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	sub := &stateSubscriber{
		id: c.nextID,
		ch: make(chan i.ConnState, 8),
	}
	c.stateSubs = append(c.stateSubs, sub)

	id := sub.id
	return &i.Subscription[i.ConnState]{
		Stream: sub.ch,
		Topic:  "connection-state",
		Unsubscribe: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for idx, entry := range c.stateSubs {
				if entry.id == id {
					c.stateSubs = append(c.stateSubs[:idx], c.stateSubs[idx+1:]...)
					close(entry.ch)
					break
				}
			}
		},
	}
}

// Emit sends a message upstream, fire-and-forget. While the connection is
// down the frame is queued and drained after reconnect.
func (c *StreamClient) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s payload", event)
	}
	frame, err := json.Marshal(Envelope{
		ReqID: uuid.NewString(),
		Event: event,
		Data:  data,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal envelope")
	}

	if config.DebugMode {
		c.log.WithComponent("stream-client").Debugf("emit %s %s", event, helpers.ToJsonString(payload))
	}

	c.mu.Lock()
	conn := c.conn
	if conn == nil || c.state != i.ConnStateConnected {
		c.outbound.PushBack(frame)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.write(conn, frame); err != nil {
		c.mu.Lock()
		c.outbound.PushBack(frame)
		c.mu.Unlock()
	}
	return nil
}

func (c *StreamClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.running = false
		c.setStateLocked(i.ConnStateDisconnected)
		c.mu.Unlock()
	})
	return nil
}

func (c *StreamClient) runLoop() {
	log := c.log.WithComponent("stream-client")
	bo := &backoff.Backoff{
		Min:    time.Second,
		Max:    time.Minute,
		Jitter: true,
	}
	attempts := 0

	for {
		select {
		case <-c.done:
			return
		default:
		}

		dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
		conn, _, err := dialer.Dial(c.endpoint, nil)
		if err != nil {
			attempts++
			if c.maxRetries > 0 && attempts >= c.maxRetries {
				log.WithError(err).Error("retry policy exhausted, giving up until next Connect")
				c.mu.Lock()
				c.running = false
				c.setStateLocked(i.ConnStateDisconnected)
				c.mu.Unlock()
				return
			}

			delay := bo.Duration()
			log.WithError(err).Warnf("dial failed, retrying in %s", delay)
			select {
			case <-c.done:
				return
			case <-time.After(delay):
				continue
			}
		}

		bo.Reset()
		attempts = 0

		c.mu.Lock()
		c.conn = conn
		c.sessionID = uuid.NewString()
		session := c.sessionID
		c.setStateLocked(i.ConnStateConnected)
		c.mu.Unlock()
		log.Infof("connected, session=%s", session)

		c.drainOutbound()
		c.readAll(conn)
		conn.Close()

		select {
		case <-c.done:
			return
		default:
		}

		promclient.ReconnectsTotal.Inc()
		c.mu.Lock()
		c.conn = nil
		c.setStateLocked(i.ConnStateReconnecting)
		c.mu.Unlock()
	}
}

func (c *StreamClient) readAll(conn *websocket.Conn) {
	log := c.log.WithComponent("stream-client")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.WithError(err).Warn("read failed, connection lost")
			}
			return
		}
		c.dispatch(msg)
	}
}

func (c *StreamClient) dispatch(msg []byte) {
	log := c.log.WithComponent("stream-client")

	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil || env.Event == "" {
		promclient.DroppedFramesTotal.Inc()
		log.Warn("dropping malformed inbound frame")
		return
	}
	promclient.PushEventsTotal.WithLabelValues(env.Event).Inc()

	if config.DebugMode {
		log.Debugf("event %s: %s", env.Event, string(env.Data))
	}

	c.mu.Lock()
	for _, entry := range c.subscriptions[env.Event] {
		select {
		case entry.ch <- env.Data:
		default:
			// a slow subscriber must not stall the shared read loop
			promclient.DroppedFramesTotal.Inc()
			log.Warnf("subscriber buffer full for %s, dropping frame", env.Event)
		}
	}
	c.mu.Unlock()
}

func (c *StreamClient) write(conn *websocket.Conn, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *StreamClient) drainOutbound() {
	for {
		c.mu.Lock()
		if c.outbound.Len() == 0 || c.conn == nil {
			c.mu.Unlock()
			return
		}
		frame := c.outbound.PopFront()
		conn := c.conn
		c.mu.Unlock()

		if err := c.write(conn, frame); err != nil {
			c.mu.Lock()
			c.outbound.PushFront(frame)
			c.mu.Unlock()
			return
		}
	}
}

func (c *StreamClient) setStateLocked(state i.ConnState) {
	if c.state == state {
		return
	}
	c.state = state
	promclient.ConnectionStateGauge.Set(stateValue(state))

	for _, sub := range c.stateSubs {
		select {
		case sub.ch <- state:
		default:
		}
	}
}

func stateValue(state i.ConnState) float64 {
	switch state {
	case i.ConnStateConnecting:
		return 1
	case i.ConnStateReconnecting:
		return 2
	case i.ConnStateConnected:
		return 3
	default:
		return 0
	}
}
