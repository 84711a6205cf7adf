// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Move kinds for metrics labels.
const (
	MoveRotate    = "rotate"
	MoveTranslate = "move"
	MoveUndo      = "undo"
	MoveBonus     = "bonus"
)

// MovesApplied counts applied player actions.
// Use RegisterMetrics to register this with a Prometheus registry.
var MovesApplied = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lightwell_moves_applied_total",
		Help: "Total number of applied player actions",
	},
	[]string{"kind"},
)

// LevelsFinished counts levels ending in completion or failure.
var LevelsFinished = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lightwell_levels_finished_total",
		Help: "Total number of levels completed or failed",
	},
	[]string{"outcome", "tier"},
)

// EvaluationDuration is the histogram for win-condition evaluation time.
var EvaluationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "lightwell_evaluation_duration_seconds",
		Help:    "Win condition evaluation duration in seconds",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
	},
	[]string{"mode"},
)

// RegisterMetrics registers engine metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(MovesApplied)
	reg.MustRegister(LevelsFinished)
	reg.MustRegister(EvaluationDuration)
}

func recordMove(kind string) {
	MovesApplied.WithLabelValues(kind).Inc()
}

func recordFinished(outcome, tier string) {
	LevelsFinished.WithLabelValues(outcome, tier).Inc()
}

func recordEvaluation(mode string, d time.Duration) {
	EvaluationDuration.WithLabelValues(mode).Observe(d.Seconds())
}
