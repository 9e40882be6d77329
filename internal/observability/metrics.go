// Package observability defines the prometheus metrics the engine
// emits. Collaborators that serve a /metrics endpoint only need to
// import this package for the instruments to register themselves.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "csslens_resolution_seconds",
		Help:    "Time spent resolving a variable to a color.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csslens_resolutions_total",
		Help: "Resolution attempts by variable kind and outcome.",
	}, []string{"kind", "outcome"})

	CacheEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csslens_cache_events_total",
		Help: "Cache lookups by cache name and hit/miss.",
	}, []string{"cache", "event"})

	WorkspaceScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslens_workspace_scans_total",
		Help: "Workspace-wide definition searches started.",
	})

	TimeoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csslens_timeouts_total",
		Help: "Operations abandoned for exceeding their time budget.",
	}, []string{"operation"})

	RegionsAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csslens_regions_analyzed_total",
		Help: "Document regions analyzed, by priority.",
	}, []string{"priority"})

	BackgroundChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslens_background_chunks_total",
		Help: "Background analysis chunks merged into cached results.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csslens_watcher_events_total",
		Help: "File system events received by the watcher.",
	})
)

// Cache lookup outcomes.
const (
	EventHit  = "hit"
	EventMiss = "miss"
)
