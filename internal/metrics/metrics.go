// Package metrics holds the Prometheus instruments for the paste
// lifecycle. All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LivePastes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quickpaste_live_pastes",
			Help: "Number of pastes currently in the index.",
		})

	CreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickpaste_created_total",
			Help: "Cumulative number of pastes created.",
		})

	ReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickpaste_read_total",
			Help: "Cumulative number of successful content reads.",
		})

	BurnedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickpaste_burned_total",
			Help: "Cumulative number of pastes removed by burn-after-read.",
		})

	ExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickpaste_expired_total",
			Help: "Cumulative number of pastes removed by expiry.",
		})

	DeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quickpaste_deleted_total",
			Help: "Cumulative number of pastes removed by explicit delete.",
		})
)

func init() {
	prometheus.MustRegister(
		LivePastes,
		CreatedTotal,
		ReadTotal,
		BurnedTotal,
		ExpiredTotal,
		DeletedTotal,
	)
}
