// Package metrics exposes Prometheus counters and gauges for the
// connection, command, and pub/sub paths.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kvbus_active_connections",
		Help: "Number of currently open client connections",
	})
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kvbus_commands_total",
		Help: "Responses produced by the dispatcher, by command kind and response status",
	}, []string{"kind", "status"})
	PublishesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kvbus_publishes_total",
		Help: "PUBLISH commands handled",
	})
	DeadSubscriptionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kvbus_dead_subscriptions_total",
		Help: "Subscriptions dropped after a failed send to their connection",
	})
	FrameErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kvbus_frame_errors_total",
		Help: "Frame read/write errors, by stage",
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(
		ActiveConnections, CommandsTotal, PublishesTotal,
		DeadSubscriptionsTotal, FrameErrorsTotal,
	)
}

// Handler returns the HTTP handler that serves the metrics in the
// Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
