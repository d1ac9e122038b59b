package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaker_chat_turns_total",
			Help: "Chat turns handled, by outcome",
		},
		[]string{"outcome"},
	)

	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaker_match_requests_total",
			Help: "Matching requests sent to the model, by status",
		},
		[]string{"status"},
	)

	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchmaker_match_duration_seconds",
			Help:    "Latency of matching requests to the model",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"provider"},
	)

	CareAdviceFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchmaker_care_advice_fallbacks_total",
			Help: "Care advice requests answered from the built-in tip list",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaker_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		},
		[]string{"route", "status"},
	)
)

// RegisterActiveInterviews publishes the number of interviews in progress,
// read from count on every scrape.
func RegisterActiveInterviews(count func() float64) prometheus.GaugeFunc {
	return promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "matchmaker_interviews_active",
			Help: "Preference interviews currently in progress",
		},
		count,
	)
}
