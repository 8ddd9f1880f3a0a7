package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total click events successfully recorded
	clicksTrackedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_clicks_tracked_total",
			Help: "Total number of click events recorded",
		},
	)

	// Clicks partitioned by resolved country code ("unknown" when the
	// resolver had no answer)
	clicksByCountry = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_clicks_by_country_total",
			Help: "Click events partitioned by resolved country code",
		},
		[]string{"country"},
	)

	// Clicks partitioned by browser family
	clicksByBrowser = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_clicks_by_browser_total",
			Help: "Click events partitioned by browser family",
		},
		[]string{"browser"},
	)

	// Clicks partitioned by device category
	clicksByDevice = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_clicks_by_device_total",
			Help: "Click events partitioned by device category",
		},
		[]string{"device"},
	)

	// End-to-end ingestion latency, resolver and store write included
	clickProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_click_processing_duration_seconds",
			Help:    "Click ingestion processing time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
	)

	// Aggregation reads partitioned by view
	statsQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_stats_queries_total",
			Help: "Aggregation queries partitioned by endpoint",
		},
		[]string{"endpoint"},
	)
)
