// Package metrics exposes relay counters in Prometheus format. Counters
// are fed from relay lifecycle events so the pipeline stays free of
// instrumentation calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dabini-lab/line-bot/internal/bus"
)

var (
	Deliveries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linebot_deliveries_total",
		Help: "Total webhook deliveries received.",
	})
	DeliveryEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linebot_delivery_events_total",
		Help: "Total events contained in webhook deliveries.",
	})
	Events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linebot_events_total",
		Help: "Total pipeline runs by outcome.",
	}, []string{"outcome"})
	EngineErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linebot_engine_errors_total",
		Help: "Total failed engine calls.",
	})
	ReplyMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linebot_reply_messages_total",
		Help: "Total outbound messages sent in reply batches.",
	})
	EngineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "linebot_engine_duration_seconds",
		Help:    "Engine call latency.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

func Register() {
	prometheus.MustRegister(
		Deliveries, DeliveryEvents, Events,
		EngineErrors, ReplyMessages, EngineDuration,
	)
}

// Observe subscribes the counters to relay lifecycle events.
func Observe(b *bus.Bus) {
	b.On(bus.EventDeliveryReceived, func(e bus.Event) {
		Deliveries.Inc()
		if n, ok := e.Payload["events"].(int); ok {
			DeliveryEvents.Add(float64(n))
		}
	})
	b.On(bus.EventEventSkipped, func(e bus.Event) { Events.WithLabelValues("skipped").Inc() })
	b.On(bus.EventEventIgnored, func(e bus.Event) { Events.WithLabelValues("ignored").Inc() })
	b.On(bus.EventEventSilent, func(e bus.Event) { Events.WithLabelValues("silent").Inc() })
	b.On(bus.EventEventFailed, func(e bus.Event) { Events.WithLabelValues("failed").Inc() })
	b.On(bus.EventEventReplied, func(e bus.Event) {
		Events.WithLabelValues("replied").Inc()
		if n, ok := e.Payload["messages"].(int); ok {
			ReplyMessages.Add(float64(n))
		}
		if s, ok := e.Payload["engine_seconds"].(float64); ok {
			EngineDuration.Observe(s)
		}
	})
	b.On(bus.EventEngineError, func(e bus.Event) {
		EngineErrors.Inc()
		if s, ok := e.Payload["engine_seconds"].(float64); ok {
			EngineDuration.Observe(s)
		}
	})
}

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
