package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "halcyon"
	subsystem = "state"
)

var (
	eventsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "events_routed_total",
		Help:      "Synchronization events dispatched to a registered store, by kind.",
	}, []string{"kind"})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "events_dropped_total",
		Help:      "Inbound events discarded because no store matched their name.",
	}, []string{"kind"})

	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "refreshes_total",
		Help:      "Store refresh attempts, by store name.",
	}, []string{"store"})

	refreshErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "refresh_errors_total",
		Help:      "Store refreshes that returned an error, by store name.",
	}, []string{"store"})

	subscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "subscriptions_active",
		Help:      "Value subscriptions currently open across all stores.",
	})
)

// EventRouted records one event dispatched to a registered store.
func EventRouted(kind string) { eventsRouted.WithLabelValues(kind).Inc() }

// EventDropped records one event discarded for naming an unregistered store.
func EventDropped(kind string) { eventsDropped.WithLabelValues(kind).Inc() }

// RefreshStarted records one refresh attempt for the named store.
func RefreshStarted(store string) { refreshes.WithLabelValues(store).Inc() }

// RefreshFailed records one failed refresh for the named store.
func RefreshFailed(store string) { refreshErrors.WithLabelValues(store).Inc() }

// SubscriptionOpened increments the live subscription gauge.
func SubscriptionOpened() { subscriptions.Inc() }

// SubscriptionClosed decrements the live subscription gauge.
func SubscriptionClosed() { subscriptions.Dec() }
