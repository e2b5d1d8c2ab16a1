package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsDispatched counts dispatch attempts by channel
	// (live, push) and outcome (sent, skipped, failed, expired).
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tandem",
		Name:      "notifications_dispatched_total",
		Help:      "Notification dispatch attempts by channel and outcome.",
	}, []string{"channel", "outcome"})

	// LiveConnections tracks the number of registered live connections.
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tandem",
		Name:      "live_connections",
		Help:      "Currently registered live websocket connections.",
	})

	// ExercisesCompleted counts exercises reaching the completed status.
	ExercisesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tandem",
		Name:      "exercises_completed_total",
		Help:      "Exercises that reached completed status.",
	})
)
