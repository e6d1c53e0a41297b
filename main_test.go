package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/game"
)

func TestRunSolve(t *testing.T) {
	for _, strategy := range []string{"random", "minimax"} {
		t.Run(strategy, func(t *testing.T) {
			var out bytes.Buffer
			turns, err := runSolve(&out, "9081", 42, strategy)
			require.NoError(t, err)
			assert.LessOrEqual(t, turns, 15)
			assert.Contains(t, out.String(), "secret 9081, strategy "+strategy)
			assert.Contains(t, out.String(), "4B0C")
			assert.True(t, strings.HasSuffix(out.String(), "guesses\n"))
		})
	}
}

func TestRunSolve_BadSecret(t *testing.T) {
	_, err := runSolve(&bytes.Buffer{}, "0123", 1, "random")
	assert.ErrorIs(t, err, code.ErrInvalidCode)
}

func TestRunPlay_HumanWins(t *testing.T) {
	in := strings.NewReader("1123\n1234\n5678\n")
	var out bytes.Buffer
	require.NoError(t, runPlay(in, &out, "5678", game.WithRand(code.NewRand(1))))
	assert.Contains(t, out.String(), "invalid code")
	assert.Contains(t, out.String(), "You win in 1 guesses!")
}

func TestRunPlay_RejectsFeedbackAndQuitsOnEOF(t *testing.T) {
	in := strings.NewReader("1234\n9876\nabc\n9 9\n")
	var out bytes.Buffer
	require.NoError(t, runPlay(in, &out, "5678", game.WithRand(code.NewRand(1))))
	s := out.String()
	assert.Contains(t, s, "Solver guesses")
	assert.Contains(t, s, "enter two numbers")
	assert.Contains(t, s, "invalid feedback")
	assert.NotContains(t, s, "You win")
}
