package rupeex

import (
	"encoding/json"

	"github.com/rupeex/go-rupeex-client/domain"
	i "github.com/rupeex/go-rupeex-client/domain/interfaces"
	promclient "github.com/rupeex/go-rupeex-client/infrastructure/prometheus"
	"github.com/rupeex/go-rupeex-client/logger"
)

const (
	TopicPriceUpdate       = "btc_price_update"
	TopicBalanceUpdate     = "user_balance_update"
	TopicTransactionUpdate = "user_transaction_update"
	TopicPlanUpdate        = "user_dca_plans_update"
	TopicAdminUserUpdate   = "admin_user_update"
)

// StreamAPI turns the raw byte streams of the shared connection into typed
// domain payload streams. A malformed push payload is logged and skipped; a
// single bad event must not take the synchronization layer down.
type StreamAPI struct {
	wc *StreamClient
}

func NewStreamAPI(wc *StreamClient) *StreamAPI {
	return &StreamAPI{wc: wc}
}

func (s *StreamAPI) PriceUpdates() (*i.Subscription[*domain.MarketRates], error) {
	return decodeStream[domain.MarketRates](s.wc, TopicPriceUpdate), nil
}

func (s *StreamAPI) BalanceUpdates() (*i.Subscription[*domain.Balance], error) {
	return decodeStream[domain.Balance](s.wc, TopicBalanceUpdate), nil
}

func (s *StreamAPI) TransactionUpdates() (*i.Subscription[*domain.TransactionWindow], error) {
	return decodeStream[domain.TransactionWindow](s.wc, TopicTransactionUpdate), nil
}

func (s *StreamAPI) PlanUpdates() (*i.Subscription[*domain.PlanList], error) {
	return decodeStream[domain.PlanList](s.wc, TopicPlanUpdate), nil
}

func (s *StreamAPI) AdminUserUpdates() (*i.Subscription[*domain.AdminUserEvent], error) {
	return decodeStream[domain.AdminUserEvent](s.wc, TopicAdminUserUpdate), nil
}

func decodeStream[T any](wc *StreamClient, topic string) *i.Subscription[*T] {
	raw := wc.Subscribe(topic)
	out := make(chan *T, defaultSubscriberBuffer)

	go func() {
		defer close(out)
		log := logger.GetLogger().WithComponent("stream-api")

		for msg := range raw.Stream {
			payload := new(T)
			if err := json.Unmarshal(msg, payload); err != nil {
				promclient.DroppedFramesTotal.Inc()
				log.WithError(err).Warnf("dropping malformed %s payload", topic)
				continue
			}
			out <- payload
		}
	}()

	return &i.Subscription[*T]{
		Stream:      out,
		Topic:       topic,
		Unsubscribe: raw.Unsubscribe,
	}
}
