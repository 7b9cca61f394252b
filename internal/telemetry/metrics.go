package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripnotify",
		Name:      "notifications_created_total",
		Help:      "Durably stored notifications, by event kind.",
	}, []string{"kind"})

	EmailDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripnotify",
		Name:      "email_dispatches_total",
		Help:      "Email mirror attempts, by outcome.",
	}, []string{"outcome"})

	FanOutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripnotify",
		Name:      "fanout_recipient_failures_total",
		Help:      "Per-recipient failures during event fan-out.",
	})

	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripnotify",
		Name:      "stream_clients",
		Help:      "Currently connected notification stream clients.",
	})
)
