package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/bullscows/internal/game"
)

func TestReport(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Report(game.Outcome{Winner: game.WinnerSolver, SolverTurns: 6, HumanTurns: 6})
	m.Report(game.Outcome{Winner: game.WinnerHuman, SolverTurns: 3, HumanTurns: 4})
	m.Report(game.Outcome{Winner: game.WinnerHuman, SolverTurns: 5, HumanTurns: 6})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GamesFinished.WithLabelValues("human")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GamesFinished.WithLabelValues("solver")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SolverTurns))
}
