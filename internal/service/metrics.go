package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_search_total",
		Help: "Total number of catalog queries evaluated.",
	})
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallery_search_duration_seconds",
		Help:    "Time spent loading and evaluating catalog queries.",
		Buckets: prometheus.DefBuckets,
	})
	viewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_views_total",
		Help: "Detail views by attribution outcome (counted, suppressed, degraded).",
	}, []string{"outcome"})
	downloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_downloads_total",
		Help: "Total number of recorded downloads.",
	})
	renderCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_render_cache_hits_total",
		Help: "Description render cache hits.",
	})
	renderCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gallery_render_cache_misses_total",
		Help: "Description render cache misses.",
	})
)
