package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ccat_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ccat_files_scanned_total",
		Help: "Total number of source files scanned successfully.",
	})

	FilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ccat_files_skipped_total",
		Help: "Total number of source files skipped because they could not be read or parsed.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ccat_graph_nodes_total",
		Help: "Number of modules in the dependency graph of the last run.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ccat_graph_edges_total",
		Help: "Number of import edges in the dependency graph of the last run.",
	})

	BrokenEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ccat_broken_edges_total",
		Help: "Number of cycle edges broken while ordering the last run.",
	})

	DuplicatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ccat_duplicates_suppressed_total",
		Help: "Total number of duplicate definitions left out of merged output.",
	})

	RulesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ccat_summary_rules_applied_total",
		Help: "Total number of blocks rewritten by each summary rule.",
	}, []string{"rule"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ccat_run_seconds",
		Help:    "Time spent on pipeline stages.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ccat_runs_total",
		Help: "Total number of pipeline runs by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ccat_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
