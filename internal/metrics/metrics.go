// Package metrics registers the Prometheus series the decision pipeline
// updates during operation, following the teacher's pattern of package-level
// vars registered in init() and exercised via small Inc/Set/Observe helpers.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ParseErrors counts malformed/unknown-variant record lines skipped by a
	// ChartTail (spec.md §4.1, §7).
	ParseErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_parse_errors_total",
			Help: "Malformed or unknown-variant record lines skipped during ingestion.",
		},
		[]string{"chart_id"},
	)

	// DedupeDropped counts records discarded as duplicates of an
	// already-seen (symbol, timestamp, bar_index, variant) key.
	DedupeDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_dedupe_dropped_total",
			Help: "Records dropped by idempotent-ingestion deduplication.",
		},
		[]string{"chart_id"},
	)

	// QueueOverflowDropped counts ingestion records dropped because a
	// per-chart bounded queue was full (oldest-drop policy, spec.md §5).
	QueueOverflowDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_queue_overflow_dropped_total",
			Help: "Ingestion records dropped because the per-chart queue overflowed.",
		},
		[]string{"chart_id"},
	)

	// BarsFinalized counts Bars handed from FeatureEngine to Snapshot.
	BarsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_bars_finalized_total",
			Help: "Bars finalized by the feature engine, by symbol.",
		},
		[]string{"symbol"},
	)

	// DataQualityWarnings counts recoverable invariant violations (NBCV sum
	// mismatch, out-of-range MenthorQ level, ...).
	DataQualityWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_data_quality_warnings_total",
			Help: "Recoverable data-quality invariant violations, by kind.",
		},
		[]string{"kind"},
	)

	// Decisions counts emitted TradingDecisions by action.
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_decisions_total",
			Help: "Trading decisions emitted, by action.",
		},
		[]string{"symbol", "action"},
	)

	// BlockedBy counts NO_TRADE decisions by the rule that blocked them.
	BlockedBy = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_blocked_by_total",
			Help: "NO_TRADE decisions by the blocking rule name.",
		},
		[]string{"symbol", "rule"},
	)

	// DecisionLatency observes wall-clock time spent inside one decision
	// cycle (analyzers + fuser), checked against the 50ms soft / 200ms hard
	// deadlines in spec.md §5.
	DecisionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradecore_decision_latency_seconds",
			Help:    "Wall-clock latency of one decision cycle.",
			Buckets: []float64{.005, .01, .02, .05, .1, .2, .5, 1},
		},
		[]string{"symbol"},
	)

	// DeadlineExceeded counts decision cycles that hit the hard deadline.
	DeadlineExceeded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradecore_deadline_exceeded_total",
			Help: "Decision cycles that exceeded the hard deadline.",
		},
		[]string{"symbol"},
	)

	// LevelStaleness reports the current staleness class distribution.
	LevelStaleness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tradecore_level_staleness",
			Help: "Count of MenthorQ levels currently in each staleness class, by symbol.",
		},
		[]string{"symbol", "class"},
	)

	// SizeMultiplier reports the last computed size_multiplier, useful for
	// dashboards correlating VIX regime with position sizing.
	SizeMultiplier = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tradecore_size_multiplier",
			Help: "Last computed size multiplier, by symbol.",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(
		ParseErrors,
		DedupeDropped,
		QueueOverflowDropped,
		BarsFinalized,
		DataQualityWarnings,
		Decisions,
		BlockedBy,
		DecisionLatency,
		DeadlineExceeded,
		LevelStaleness,
		SizeMultiplier,
	)
}
