// Package metrics holds Prometheus instruments that are used across the
// framework.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conduct_requests_total",
			Help: "Requests dispatched, by controller and action.",
		}, []string{"controller", "action"})

	RendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conduct_renders_total",
			Help: "Responses rendered, by negotiated format.",
		}, []string{"format"})

	RenderErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conduct_render_errors_total",
			Help: "Template misses and execution failures.",
		})

	RedirectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conduct_redirects_total",
			Help: "Responses committed as redirects.",
		})

	DoubleCommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conduct_double_commits_total",
			Help: "Fatal attempts to finalize an already-committed context.",
		})

	FlashPopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "conduct_flash_pops_total",
			Help: "Flash keys consumed through pop.",
		})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RendersTotal,
		RenderErrorsTotal,
		RedirectsTotal,
		DoubleCommitsTotal,
		FlashPopsTotal,
	)
}
