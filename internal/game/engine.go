// internal/game/engine.go
//
// Session engine for Bulls and Cows.
// Responsibilities:
//   - Start a game from the human's secret and a random (or fixed) solver secret.
//   - Score human guesses against the solver's secret.
//   - Hand each human guess a solver reply, then block until the human scores it.
//   - Check declared feedback against the human's real secret (strict mode).
//   - Track state transitions: not_started → in_progress → over.
//
// Turn protocol:
//   - Only one action is pending at a time. While a solver guess awaits
//     feedback, human guesses are rejected with ErrAwaitingFeedback.
//   - A human guess that does not win unblocks exactly one solver guess.
//   - Either side reaching four bulls ends the game; the Reporter is called once.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/solver"
)

var (
	ErrNotStarted           = errors.New("game not started")
	ErrAlreadyStarted       = errors.New("game already started")
	ErrGameOver             = errors.New("game over")
	ErrAwaitingFeedback     = errors.New("waiting for feedback on solver guess")
	ErrNoPendingGuess       = errors.New("no solver guess awaiting feedback")
	ErrInconsistentFeedback = errors.New("feedback does not match your secret")
)

// Option configures a Session.
type Option func(*Session)

// WithRand injects the random source for the solver's secret and guesses.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithStrategy selects the solver's guess strategy.
func WithStrategy(st solver.Strategy) Option {
	return func(s *Session) { s.strategy = st }
}

// WithStrictFeedback toggles checking declared feedback against the human's secret.
// Enabled by default.
func WithStrictFeedback(strict bool) Option {
	return func(s *Session) { s.strict = strict }
}

// WithReporter sets the receiver for the finished-game outcome.
func WithReporter(r Reporter) Option {
	return func(s *Session) { s.reporter = r }
}

// WithOwner tags the session with a user or anonymous id.
func WithOwner(id string) Option {
	return func(s *Session) { s.OwnerID = id }
}

// WithDaily marks the session as the daily game for date (YYYY-MM-DD).
func WithDaily(date string) Option {
	return func(s *Session) {
		s.Mode = ModeDaily
		s.DailyDate = date
	}
}

// WithClock overrides time.Now for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New constructs a session in PhaseNotStarted.
func New(opts ...Option) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Mode:     ModeClassic,
		phase:    PhaseNotStarted,
		strict:   true,
		strategy: solver.RandomStrategy{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = code.NewRand(time.Now().UnixNano())
	}
	s.CreatedAt = s.now().UTC()
	return s
}

// Start begins a game with the human's secret and a random solver secret.
func (s *Session) Start(humanSecret string) error {
	return s.StartWithSolverSecret(humanSecret, "")
}

// StartWithSolverSecret is Start with a fixed code for the human to crack.
// An empty solverSecret draws one at random.
func (s *Session) StartWithSolverSecret(humanSecret string, solverSecret code.Code) error {
	if s.phase != PhaseNotStarted {
		return ErrAlreadyStarted
	}
	hs, err := code.Parse(humanSecret)
	if err != nil {
		return err
	}
	if solverSecret == "" {
		solverSecret = code.Random(s.rng)
	} else if !code.IsValid(string(solverSecret)) {
		return fmt.Errorf("solver secret: %w", code.ErrInvalidCode)
	}

	s.humanSecret = hs
	s.solverSecret = solverSecret
	s.humanHistory = []GuessRecord{}
	s.solverHistory = []GuessRecord{}
	s.solver = solver.New(solver.WithRand(s.rng), solver.WithStrategy(s.strategy))
	s.waiting = false
	s.winner = WinnerNone
	s.reported = false
	s.startedAt = s.now().UTC()
	s.finishedAt = time.Time{}
	s.phase = PhaseInProgress
	return nil
}

// SubmitHumanGuess scores the human's guess against the solver's secret.
// If the guess does not win, the solver answers with its next guess and the
// session waits for the human's feedback on it.
func (s *Session) SubmitHumanGuess(guess string) (Turn, error) {
	if err := s.checkPlaying(); err != nil {
		return Turn{}, err
	}
	if s.waiting {
		return Turn{}, ErrAwaitingFeedback
	}
	g, err := code.Parse(guess)
	if err != nil {
		return Turn{}, err
	}

	fb := code.Evaluate(g, s.solverSecret)
	rec := GuessRecord{
		Code:  g,
		Bulls: fb.Bulls,
		Cows:  fb.Cows,
		Turn:  len(s.humanHistory) + 1,
		At:    s.now().UTC(),
	}
	s.humanHistory = append(s.humanHistory, rec)
	turn := Turn{Human: rec, Message: Describe(fb)}

	if fb.Won() {
		s.finish(WinnerHuman)
		return turn, nil
	}

	next, err := s.solver.NextGuess()
	if err != nil {
		// unreachable while in progress: a solver win ends the session
		return turn, fmt.Errorf("solver guess: %w", err)
	}
	s.waiting = true
	turn.SolverGuess = next
	return turn, nil
}

// SubmitSolverFeedback records the human's bulls/cows for the pending solver guess.
// Rejected feedback leaves the session untouched so the human can re-enter it.
func (s *Session) SubmitSolverFeedback(bulls, cows int) (GuessRecord, error) {
	if err := s.checkPlaying(); err != nil {
		return GuessRecord{}, err
	}
	if !s.waiting {
		return GuessRecord{}, ErrNoPendingGuess
	}
	fb := code.Feedback{Bulls: bulls, Cows: cows}
	if err := fb.Valid(); err != nil {
		return GuessRecord{}, err
	}
	guess := s.solver.Pending()
	if s.strict {
		if actual := code.Evaluate(guess, s.humanSecret); actual != fb {
			return GuessRecord{}, fmt.Errorf("%w: %s for %s", ErrInconsistentFeedback, fb, guess)
		}
	}
	if err := s.solver.ApplyFeedback(fb); err != nil {
		return GuessRecord{}, err
	}

	rec := GuessRecord{
		Code:  guess,
		Bulls: fb.Bulls,
		Cows:  fb.Cows,
		Turn:  len(s.solverHistory) + 1,
		At:    s.now().UTC(),
	}
	s.solverHistory = append(s.solverHistory, rec)
	s.waiting = false

	if fb.Won() {
		s.finish(WinnerSolver)
	}
	return rec, nil
}

// Reset discards the game and returns to PhaseNotStarted.
// Identity and configuration (ID, owner, mode, options) are kept.
func (s *Session) Reset() {
	s.phase = PhaseNotStarted
	s.winner = WinnerNone
	s.reported = false
	s.humanSecret, s.solverSecret = "", ""
	s.humanHistory, s.solverHistory = nil, nil
	s.solver = nil
	s.waiting = false
	s.startedAt, s.finishedAt = time.Time{}, time.Time{}
}

// SetReporter attaches the outcome receiver, e.g. after loading from a store.
func (s *Session) SetReporter(r Reporter) { s.reporter = r }

// Phase reports the lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Winner is set once the phase is PhaseOver.
func (s *Session) Winner() Winner { return s.winner }

// WaitingForFeedback reports whether a solver guess awaits the human's answer.
func (s *Session) WaitingForFeedback() bool { return s.waiting }

// SolverGuess is the pending solver guess, or "".
func (s *Session) SolverGuess() code.Code {
	if !s.waiting || s.solver == nil {
		return ""
	}
	return s.solver.Pending()
}

// CandidateCount is how many codes the solver still considers possible.
func (s *Session) CandidateCount() int {
	if s.solver == nil {
		return code.UniverseSize
	}
	return s.solver.CandidateCount()
}

// HumanHistory returns a copy of the human's guesses.
func (s *Session) HumanHistory() []GuessRecord {
	return append([]GuessRecord(nil), s.humanHistory...)
}

// SolverHistory returns a copy of the solver's answered guesses.
func (s *Session) SolverHistory() []GuessRecord {
	return append([]GuessRecord(nil), s.solverHistory...)
}

// View renders the session for clients.
func (s *Session) View() View {
	v := View{
		ID:                 s.ID,
		Mode:               s.Mode,
		DailyDate:          s.DailyDate,
		Phase:              s.phase,
		Winner:             s.winner,
		WaitingForFeedback: s.waiting,
		SolverGuess:        s.SolverGuess(),
		Candidates:         s.CandidateCount(),
		HumanHistory:       s.HumanHistory(),
		SolverHistory:      s.SolverHistory(),
	}
	if v.HumanHistory == nil {
		v.HumanHistory = []GuessRecord{}
	}
	if v.SolverHistory == nil {
		v.SolverHistory = []GuessRecord{}
	}
	if s.phase == PhaseOver {
		v.SolverSecret = s.solverSecret
	}
	return v
}

// Outcome summarizes the game; meaningful once the phase is PhaseOver.
func (s *Session) Outcome() Outcome {
	o := Outcome{
		SessionID:   s.ID,
		OwnerID:     s.OwnerID,
		Mode:        s.Mode,
		DailyDate:   s.DailyDate,
		Winner:      s.winner,
		HumanTurns:  len(s.humanHistory),
		SolverTurns: len(s.solverHistory),
	}
	if !s.finishedAt.IsZero() {
		o.Elapsed = s.finishedAt.Sub(s.startedAt)
	}
	return o
}

func (s *Session) checkPlaying() error {
	switch s.phase {
	case PhaseNotStarted:
		return ErrNotStarted
	case PhaseOver:
		return ErrGameOver
	}
	return nil
}

// finish ends the game and reports it if that has not happened yet.
func (s *Session) finish(w Winner) {
	s.phase = PhaseOver
	s.winner = w
	s.waiting = false
	s.finishedAt = s.now().UTC()
	if s.reported {
		return
	}
	s.reported = true
	if s.reporter != nil {
		s.reporter.Report(s.Outcome())
	}
}
