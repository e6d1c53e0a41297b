// internal/game/types.go
//
// Core type definitions for a Bulls and Cows session.
// Defines:
//   - Phase/Winner/Mode: coarse session state.
//   - GuessRecord: one scored guess in either player's history.
//   - Outcome + Reporter: the once-per-game result handed to score keeping.
//   - Session: the two simultaneous sub-games (human vs solver secret,
//     solver vs human secret) and whose move it is.

package game

import (
	"math/rand"
	"time"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/solver"
)

// Phase is the session lifecycle position.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseOver       Phase = "over"
)

// Winner identifies who cracked the other's secret first.
type Winner string

const (
	WinnerNone   Winner = ""
	WinnerHuman  Winner = "human"
	WinnerSolver Winner = "solver"
)

// Mode distinguishes free play from the shared daily code.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// GuessRecord is one guess and the feedback it earned.
type GuessRecord struct {
	Code  code.Code `json:"code"`
	Bulls int       `json:"bulls"`
	Cows  int       `json:"cows"`
	Turn  int       `json:"turn"` // 1-based per player
	At    time.Time `json:"at"`
}

// Feedback returns the record's bulls/cows pair.
func (r GuessRecord) Feedback() code.Feedback {
	return code.Feedback{Bulls: r.Bulls, Cows: r.Cows}
}

// Outcome describes a finished game.
type Outcome struct {
	SessionID   string        `json:"sessionId"`
	OwnerID     string        `json:"ownerId"`
	Mode        Mode          `json:"mode"`
	DailyDate   string        `json:"dailyDate,omitempty"`
	Winner      Winner        `json:"winner"`
	HumanTurns  int           `json:"humanTurns"`
	SolverTurns int           `json:"solverTurns"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Reporter receives each finished game exactly once.
// Implementations own their failure handling; the session never retries.
type Reporter interface {
	Report(o Outcome)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(o Outcome)

func (f ReporterFunc) Report(o Outcome) { f(o) }

// Reporters fans one outcome out to several receivers in order.
type Reporters []Reporter

func (rs Reporters) Report(o Outcome) {
	for _, r := range rs {
		if r != nil {
			r.Report(o)
		}
	}
}

// Turn is the result of a human guess: its record, a human-readable
// message, and the solver's answering guess (empty once the game is over).
type Turn struct {
	Human       GuessRecord `json:"human"`
	Message     string      `json:"message"`
	SolverGuess code.Code   `json:"solverGuess,omitempty"`
}

// Session holds the state of one game between a human and the solver.
// It is not safe for concurrent use; callers serialize events.
type Session struct {
	ID        string
	OwnerID   string
	Mode      Mode
	DailyDate string // YYYY-MM-DD for daily games
	CreatedAt time.Time

	startedAt  time.Time
	finishedAt time.Time
	phase      Phase
	winner     Winner
	reported   bool

	humanSecret  code.Code // solver is guessing this
	solverSecret code.Code // human is guessing this

	humanHistory  []GuessRecord
	solverHistory []GuessRecord

	solver  *solver.Solver
	waiting bool // a solver guess awaits the human's feedback

	rng      *rand.Rand
	strategy solver.Strategy
	strict   bool
	reporter Reporter
	now      func() time.Time
}

// View is a read-only rendering of the session for clients.
// SolverSecret stays empty until the game is over.
type View struct {
	ID                 string        `json:"id"`
	Mode               Mode          `json:"mode"`
	DailyDate          string        `json:"dailyDate,omitempty"`
	Phase              Phase         `json:"phase"`
	Winner             Winner        `json:"winner,omitempty"`
	WaitingForFeedback bool          `json:"waitingForFeedback"`
	SolverGuess        code.Code     `json:"solverGuess,omitempty"`
	Candidates         int           `json:"candidates"`
	HumanHistory       []GuessRecord `json:"humanHistory"`
	SolverHistory      []GuessRecord `json:"solverHistory"`
	SolverSecret       code.Code     `json:"solverSecret,omitempty"`
}
