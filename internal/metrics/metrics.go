// Package metrics holds the Prometheus instruments used across the service.
// All collectors are registered with the global registry, so mounting
// promhttp.Handler() is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apod_cache_lookups_total",
			Help: "Store lookups by result (hit or miss).",
		}, []string{"result"})

	UpstreamFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apod_upstream_fetches_total",
			Help: "Calls to the upstream APOD API by outcome.",
		}, []string{"outcome"})

	RecordsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apod_records_stored_total",
			Help: "Records newly persisted to the store.",
		})

	RefreshRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apod_refresh_runs_total",
			Help: "Daily refresh runs by result.",
		}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		CacheLookups,
		UpstreamFetches,
		RecordsStored,
		RefreshRuns,
	)
}
