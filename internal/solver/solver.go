// internal/solver/solver.go
//
// Constraint-propagation codebreaker.
// The solver keeps every code still consistent with the feedback seen so far.
// Each accepted feedback keeps only the candidates c with
// Evaluate(guess, c) == feedback, so the set never grows and never loses the
// real secret under honest feedback.
//
// States:
//
//	Idle → AwaitingFeedback (NextGuess) → Idle | Won | NoCandidates (ApplyFeedback)
//
// When the set runs dry (inconsistent feedback slipped through) NextGuess
// synthesizes a fresh valid code instead of failing.
package solver

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/robalobadob/bullscows/internal/code"
)

var (
	ErrNoPendingGuess = errors.New("solver: no guess awaiting feedback")
	ErrSolved         = errors.New("solver: already won")
)

// State is the solver's position in its guess/feedback cycle.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingFeedback State = "awaiting_feedback"
	StateWon              State = "won"
	StateNoCandidates     State = "no_candidates"
)

// Solver deduces a hidden code from bulls/cows feedback.
// It is not safe for concurrent use; one game owns one Solver.
type Solver struct {
	candidates []code.Code
	pending    code.Code
	state      State
	turns      int
	rng        *rand.Rand
	strategy   Strategy
}

// Option configures a Solver.
type Option func(*Solver)

// WithRand injects the random source used for guess selection and fallbacks.
func WithRand(rng *rand.Rand) Option {
	return func(s *Solver) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithStrategy swaps the guess-selection strategy (default RandomStrategy).
func WithStrategy(st Strategy) Option {
	return func(s *Solver) {
		if st != nil {
			s.strategy = st
		}
	}
}

// New returns a solver seeded with the full candidate universe.
func New(opts ...Option) *Solver {
	s := &Solver{
		candidates: code.All(),
		state:      StateIdle,
		strategy:   RandomStrategy{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = code.NewRand(time.Now().UnixNano())
	}
	return s
}

// NextGuess emits the next guess and waits for feedback on it.
// Asking again before feedback returns the same pending guess.
func (s *Solver) NextGuess() (code.Code, error) {
	switch s.state {
	case StateWon:
		return "", ErrSolved
	case StateAwaitingFeedback:
		return s.pending, nil
	}

	var g code.Code
	if len(s.candidates) == 0 {
		g = code.Random(s.rng)
	} else {
		g = s.strategy.Pick(s.candidates, s.rng)
	}
	s.pending = g
	s.turns++
	s.state = StateAwaitingFeedback
	return g, nil
}

// ApplyFeedback folds feedback for the pending guess into the candidate set.
// Invalid feedback is rejected without touching any state.
func (s *Solver) ApplyFeedback(fb code.Feedback) error {
	if s.state != StateAwaitingFeedback {
		if s.state == StateWon {
			return ErrSolved
		}
		return ErrNoPendingGuess
	}
	if err := fb.Valid(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}

	guess := s.pending
	s.pending = ""
	if fb.Won() {
		s.state = StateWon
		return nil
	}

	kept := s.candidates[:0]
	for _, c := range s.candidates {
		if c == guess {
			continue
		}
		if code.Evaluate(guess, c) == fb {
			kept = append(kept, c)
		}
	}
	s.candidates = kept

	if len(s.candidates) == 0 {
		s.state = StateNoCandidates
	} else {
		s.state = StateIdle
	}
	return nil
}

// CandidateCount is the number of codes still consistent with all feedback.
func (s *Solver) CandidateCount() int { return len(s.candidates) }

// Candidates returns a copy of the remaining candidates in ascending order.
func (s *Solver) Candidates() []code.Code {
	out := make([]code.Code, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// HasWon reports whether a guess received four bulls.
func (s *Solver) HasWon() bool { return s.state == StateWon }

// State reports the current solver state.
func (s *Solver) State() State { return s.state }

// Pending is the guess awaiting feedback, or "" if none.
func (s *Solver) Pending() code.Code { return s.pending }

// Turns counts guesses emitted so far.
func (s *Solver) Turns() int { return s.turns }

// Strategy reports the selection strategy in use.
func (s *Solver) Strategy() Strategy { return s.strategy }
