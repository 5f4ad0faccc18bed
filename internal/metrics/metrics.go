package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WeatherAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morningweather_api_calls_total",
			Help: "Total OpenWeatherMap API calls",
		},
		[]string{"endpoint", "status"},
	)

	WeatherAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "morningweather_api_latency_seconds",
			Help:    "OpenWeatherMap API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	GeocodeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morningweather_geocode_calls_total",
			Help: "Total geocoding API calls",
		},
		[]string{"status"},
	)

	FetchSequencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morningweather_fetch_sequences_total",
			Help: "Total weather fetch sequences by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morningweather_notifications_scheduled_total",
			Help: "Total local notifications scheduled",
		},
		[]string{"kind"},
	)
)
