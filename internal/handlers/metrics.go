package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	issuancesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soat_issuances_total",
		Help: "SOATs expedited",
	})

	topupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soat_topups_total",
		Help: "Recargas recorded",
	})

	revisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soat_revisions_total",
		Help: "SOAT revisions applied",
	})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "soat_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})
)
