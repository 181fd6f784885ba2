package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "campaign_planner"

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	healthScore prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		healthScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "diagnosis_health_score",
			Help:      "Health scores returned by successful diagnoses.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.healthScore} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
