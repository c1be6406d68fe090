// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus instruments for daemon calls
// and subscriptions. A nil *Metrics is valid and records nothing, so
// callers never need to check whether metrics are enabled.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

const namespace = "tradedesk"

// Outcome labels for calls that did not fail with a daemon error.
const (
	OutcomeOK       = "ok"
	OutcomeCanceled = "canceled"
	OutcomeOther    = "error"
)

// Metrics is a set of registered instruments.
type Metrics struct {
	calls         *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	events        *prometheus.CounterVec
	subscriptions prometheus.Gauge
}

// New creates the instruments and registers them with registerer.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "calls_total",
				Help:      "Daemon calls by command and outcome (ok or error kind).",
			},
			[]string{"command", "outcome"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "call_duration_seconds",
				Help:      "Time from connect to response for daemon calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "subscription",
				Name:      "events_total",
				Help:      "Subscription events received by topic.",
			},
			[]string{"topic"},
		),
		subscriptions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "subscription",
				Name:      "active",
				Help:      "Subscriptions currently open.",
			},
		),
	}
	for _, collector := range []prometheus.Collector{m.calls, m.callDuration, m.events, m.subscriptions} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Outcome returns the outcome label for a call's error.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind, ok := daemonerr.KindOf(err); ok {
		return string(kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeCanceled
	}
	return OutcomeOther
}

// ObserveCall records one finished call.
func (m *Metrics) ObserveCall(command string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(command, Outcome(err)).Inc()
	m.callDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// ObserveEvent records one received subscription event.
func (m *Metrics) ObserveEvent(topic string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(topic).Inc()
}

// SubscriptionOpened increments the active subscription gauge.
func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.subscriptions.Inc()
}

// SubscriptionClosed decrements the active subscription gauge.
func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.subscriptions.Dec()
}

// Handler serves the metrics in gatherer in the Prometheus exposition
// format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
