// Package metrics exposes prometheus instruments for games and the solver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/robalobadob/bullscows/internal/game"
)

// Metrics bundles the server's instruments.
type Metrics struct {
	GamesStarted            *prometheus.CounterVec
	GamesFinished           *prometheus.CounterVec
	InvalidInput            *prometheus.CounterVec
	SolverTurns             prometheus.Histogram
	HumanTurns              prometheus.Histogram
	CandidatesAfterFeedback prometheus.Histogram
}

// New registers the instruments on reg. Pass prometheus.NewRegistry() in tests
// to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GamesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bullscows",
			Name:      "games_started_total",
			Help:      "Games started, by mode.",
		}, []string{"mode"}),
		GamesFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bullscows",
			Name:      "games_finished_total",
			Help:      "Games finished, by winner.",
		}, []string{"winner"}),
		InvalidInput: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bullscows",
			Name:      "invalid_input_total",
			Help:      "Rejected player input, by kind (code, feedback, inconsistent).",
		}, []string{"kind"}),
		SolverTurns: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bullscows",
			Name:      "solver_turns",
			Help:      "Solver guesses per finished game.",
			Buckets:   prometheus.LinearBuckets(1, 1, 15),
		}),
		HumanTurns: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bullscows",
			Name:      "human_turns",
			Help:      "Human guesses per finished game.",
			Buckets:   prometheus.LinearBuckets(1, 1, 15),
		}),
		CandidatesAfterFeedback: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bullscows",
			Name:      "candidates_after_feedback",
			Help:      "Solver candidate-set size after each accepted feedback.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 13),
		}),
	}
}

// Report implements game.Reporter.
func (m *Metrics) Report(o game.Outcome) {
	m.GamesFinished.WithLabelValues(string(o.Winner)).Inc()
	m.SolverTurns.Observe(float64(o.SolverTurns))
	m.HumanTurns.Observe(float64(o.HumanTurns))
}
