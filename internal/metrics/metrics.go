// Package metrics счётчики рыночного движка.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agromarket"

//nolint:gochecknoglobals
var (
	Ticks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "market_loop",
		Name:      "ticks_total",
		Help:      "Market loop ticks by result.",
	}, []string{"result"})

	QuotesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "market_loop",
		Name:      "quotes_total",
		Help:      "Quotes received from the quote source.",
	}, []string{"ticker"})

	Opportunities = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "market_loop",
		Name:      "opportunities_total",
		Help:      "RSI opportunity messages published.",
	}, []string{"ticker", "zone"})

	AlertsFired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "fired_total",
		Help:      "Price alerts fired and deactivated.",
	})

	OfferTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "negotiation",
		Name:      "transitions_total",
		Help:      "Offer state transitions.",
	}, []string{"status"})

	OfferConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "negotiation",
		Name:      "version_conflicts_total",
		Help:      "Optimistic version conflicts on offers.",
	})

	HubSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "subscribers",
		Help:      "Connected push subscribers.",
	})

	HubDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "dropped_events_total",
		Help:      "Events dropped because a subscriber mailbox was full.",
	})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notify",
		Name:      "failures_total",
		Help:      "Notification delivery failures by channel.",
	}, []string{"channel"})
)
