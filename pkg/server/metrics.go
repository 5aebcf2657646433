package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	appliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filterd_applies_total",
		Help: "Filter apply operations by page and backend status",
	}, []string{"page", "status"})
	applyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filterd_apply_duration_seconds",
		Help:    "End to end apply latency including the backend call",
		Buckets: prometheus.DefBuckets,
	}, []string{"page"})
	suggestRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filterd_suggest_requests_total",
		Help: "Autocomplete lookups by field",
	}, []string{"field"})
	clearsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filterd_clears_total",
		Help: "Clear-all operations by page",
	}, []string{"page"})
)
