package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dedupDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxonomy",
		Subsystem: "dedup",
		Name:      "decisions_total",
		Help:      "Duplicate guard outcomes broken down by level and decision (blocked, confirmed, rejected_by_user).",
	}, []string{"level", "decision"})

	writeConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxonomy",
		Subsystem: "write",
		Name:      "conflicts_total",
		Help:      "Taxonomy write conflicts broken down by kind.",
	}, []string{"kind"})
)

func recordDedupDecision(level, decision string) {
	dedupDecisions.WithLabelValues(level, decision).Inc()
}

func recordWriteConflict(kind string) {
	if kind == "" {
		kind = "other"
	}
	writeConflicts.WithLabelValues(kind).Inc()
}
