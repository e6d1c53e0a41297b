package game

import (
	"fmt"
	"time"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/solver"
)

// Snapshot is the persisted form of a Session.
// It contains both secrets and must never be sent to clients.
type Snapshot struct {
	ID            string           `json:"id"`
	OwnerID       string           `json:"ownerId,omitempty"`
	Mode          Mode             `json:"mode"`
	DailyDate     string           `json:"dailyDate,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	StartedAt     time.Time        `json:"startedAt"`
	FinishedAt    time.Time        `json:"finishedAt"`
	Phase         Phase            `json:"phase"`
	Winner        Winner           `json:"winner,omitempty"`
	Reported      bool             `json:"reported"`
	HumanSecret   code.Code        `json:"humanSecret,omitempty"`
	SolverSecret  code.Code        `json:"solverSecret,omitempty"`
	HumanHistory  []GuessRecord    `json:"humanHistory"`
	SolverHistory []GuessRecord    `json:"solverHistory"`
	Waiting       bool             `json:"waiting"`
	Strict        bool             `json:"strict"`
	Strategy      string           `json:"strategy,omitempty"`
	Solver        *solver.Snapshot `json:"solver,omitempty"`
}

// Snapshot captures the session for a store.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		Mode:          s.Mode,
		DailyDate:     s.DailyDate,
		CreatedAt:     s.CreatedAt,
		StartedAt:     s.startedAt,
		FinishedAt:    s.finishedAt,
		Phase:         s.phase,
		Winner:        s.winner,
		Reported:      s.reported,
		HumanSecret:   s.humanSecret,
		SolverSecret:  s.solverSecret,
		HumanHistory:  s.HumanHistory(),
		SolverHistory: s.SolverHistory(),
		Waiting:       s.waiting,
		Strict:        s.strict,
		Strategy:      s.strategy.Name(),
	}
	if s.solver != nil {
		ss := s.solver.Snapshot()
		snap.Solver = &ss
	}
	return snap
}

// Restore rebuilds a session from a snapshot. Options that are not part of
// the snapshot (random source, reporter, clock) come from opts.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	if snap.ID == "" {
		return nil, fmt.Errorf("restore session: missing id")
	}
	switch snap.Phase {
	case PhaseNotStarted, PhaseInProgress, PhaseOver:
	default:
		return nil, fmt.Errorf("restore session %s: unknown phase %q", snap.ID, snap.Phase)
	}

	s := New(opts...)
	s.ID = snap.ID
	s.OwnerID = snap.OwnerID
	s.Mode = snap.Mode
	if s.Mode == "" {
		s.Mode = ModeClassic
	}
	s.DailyDate = snap.DailyDate
	s.CreatedAt = snap.CreatedAt
	s.startedAt = snap.StartedAt
	s.finishedAt = snap.FinishedAt
	s.phase = snap.Phase
	s.winner = snap.Winner
	s.reported = snap.Reported
	s.strict = snap.Strict
	s.humanHistory = snap.HumanHistory
	s.solverHistory = snap.SolverHistory
	s.waiting = snap.Waiting
	if snap.Strategy != "" {
		s.strategy = solver.StrategyByName(snap.Strategy)
	}

	if s.phase == PhaseNotStarted {
		s.Reset()
		return s, nil
	}

	if !code.IsValid(string(snap.HumanSecret)) || !code.IsValid(string(snap.SolverSecret)) {
		return nil, fmt.Errorf("restore session %s: secrets: %w", snap.ID, code.ErrInvalidCode)
	}
	s.humanSecret = snap.HumanSecret
	s.solverSecret = snap.SolverSecret
	if snap.Solver == nil {
		return nil, fmt.Errorf("restore session %s: missing solver state", snap.ID)
	}
	sv, err := solver.Restore(*snap.Solver, solver.WithRand(s.rng))
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", snap.ID, err)
	}
	s.solver = sv
	s.strategy = sv.Strategy()
	if s.waiting && sv.State() != solver.StateAwaitingFeedback {
		return nil, fmt.Errorf("restore session %s: waiting flag without pending solver guess", snap.ID)
	}
	return s, nil
}
