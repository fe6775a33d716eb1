// Package metrics defines the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsRecorded counts recorded movements by kind.
	MovementsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finledger_movements_recorded_total",
			Help: "Total number of movements recorded, by kind",
		},
		[]string{"kind"},
	)

	// MovementsRejected counts rejected movements by reason.
	MovementsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finledger_movements_rejected_total",
			Help: "Total number of rejected movements, by reason",
		},
		[]string{"reason"},
	)

	// AccountsCreated counts created accounts.
	AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finledger_accounts_created_total",
		Help: "Total number of accounts created",
	})

	// BalanceFoldDuration observes how long balance folds take.
	BalanceFoldDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finledger_balance_fold_duration_seconds",
		Help:    "Duration of balance fold queries",
		Buckets: prometheus.DefBuckets,
	})

	// OutboxEventsPublished counts delivered outbox events.
	OutboxEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finledger_outbox_events_published_total",
		Help: "Total number of outbox events published",
	})

	// OutboxPublishErrors counts failed outbox deliveries.
	OutboxPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finledger_outbox_publish_errors_total",
		Help: "Total number of outbox publish failures",
	})
)
