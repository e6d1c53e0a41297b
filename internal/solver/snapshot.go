package solver

import (
	"fmt"
	"slices"

	"github.com/robalobadob/bullscows/internal/code"
)

// Snapshot is the serializable solver state.
type Snapshot struct {
	Candidates []code.Code `json:"candidates"`
	Pending    code.Code   `json:"pending,omitempty"`
	State      State       `json:"state"`
	Turns      int         `json:"turns"`
	Strategy   string      `json:"strategy"`
}

// Snapshot captures the solver for persistence.
func (s *Solver) Snapshot() Snapshot {
	return Snapshot{
		Candidates: s.Candidates(),
		Pending:    s.pending,
		State:      s.state,
		Turns:      s.turns,
		Strategy:   s.strategy.Name(),
	}
}

// Restore rebuilds a solver from a snapshot. Candidates are revalidated so a
// tampered snapshot cannot smuggle malformed codes into the filter, and
// sorted back into ascending order.
func Restore(snap Snapshot, opts ...Option) (*Solver, error) {
	s := New(append([]Option{WithStrategy(StrategyByName(snap.Strategy))}, opts...)...)

	switch snap.State {
	case StateIdle, StateAwaitingFeedback, StateWon, StateNoCandidates:
	default:
		return nil, fmt.Errorf("solver: restore: unknown state %q", snap.State)
	}
	if snap.State == StateAwaitingFeedback && !code.IsValid(string(snap.Pending)) {
		return nil, fmt.Errorf("solver: restore: pending guess: %w", code.ErrInvalidCode)
	}
	if len(snap.Candidates) > code.UniverseSize {
		return nil, fmt.Errorf("solver: restore: %d candidates exceeds universe", len(snap.Candidates))
	}

	cands := make([]code.Code, 0, len(snap.Candidates))
	seen := make(map[code.Code]struct{}, len(snap.Candidates))
	for _, c := range snap.Candidates {
		if !code.IsValid(string(c)) {
			return nil, fmt.Errorf("solver: restore: candidate %q: %w", c, code.ErrInvalidCode)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cands = append(cands, c)
	}
	slices.Sort(cands)

	s.candidates = cands
	s.pending = snap.Pending
	s.state = snap.State
	s.turns = snap.Turns
	if s.state != StateAwaitingFeedback {
		s.pending = ""
	}
	return s, nil
}
