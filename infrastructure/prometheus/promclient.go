package promclient

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rupeex/go-rupeex-client/logger"
)

var ConnectionStateGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "stream_connection_state",
		Help: "stream connection lifecycle state (0 disconnected, 1 connecting, 2 reconnecting, 3 connected)",
	},
)

var ReconnectsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stream_reconnects_total",
		Help: "number of physical stream reconnections",
	},
)

var HandshakesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_handshakes_total",
		Help: "authentication handshakes emitted, by result",
	},
	[]string{"result"},
)

var PushEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "push_events_total",
		Help: "push events received, by event name",
	},
	[]string{"event"},
)

var PullFetchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pull_fetches_total",
		Help: "pull-channel requests, by path and result",
	},
	[]string{"path", "result"},
)

var DroppedFramesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "stream_dropped_frames_total",
		Help: "inbound frames dropped because a subscriber buffer was full or the payload was malformed",
	},
)

func StartPromClientServer(addr string) {
	log := logger.GetLogger().WithComponent("promclient")

	reg := prometheus.NewRegistry()
	promHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	reg.MustRegister(ConnectionStateGauge)
	reg.MustRegister(ReconnectsTotal)
	reg.MustRegister(HandshakesTotal)
	reg.MustRegister(PushEventsTotal)
	reg.MustRegister(PullFetchesTotal)
	reg.MustRegister(DroppedFramesTotal)
	reg.MustRegister(collectors.NewGoCollector())

	http.Handle("/metrics", promHandler)
	log.Infof("prometheus server listening at %s", addr)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.WithError(err).Fatal("failed to serve metrics")
	}
}
