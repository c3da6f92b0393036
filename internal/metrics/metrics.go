// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BroadcastEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_broadcast_events_total",
			Help: "Total number of events fanned out to websocket clients",
		},
		[]string{"event"},
	)

	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoreboard_connected_clients",
			Help: "Currently connected websocket clients",
		},
	)

	QuickScoreTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_quick_score_total",
			Help: "Quick score updates applied over the realtime channel",
		},
		[]string{"team", "wicket"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
