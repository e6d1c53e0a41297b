package score

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bullscows/internal/game"
)

// Reporter writes finished games into the ledger. Owners without an account
// (anonymous players) are skipped. Failures are logged, never retried.
type Reporter struct {
	Ledger  *Ledger
	Timeout time.Duration
}

// NewReporter returns a Reporter with a 5s write timeout.
func NewReporter(l *Ledger) *Reporter {
	return &Reporter{Ledger: l, Timeout: 5 * time.Second}
}

func (r *Reporter) Report(o game.Outcome) {
	if o.OwnerID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	err := r.Ledger.RecordOutcome(ctx, o.OwnerID, o.Winner == game.WinnerHuman)
	switch {
	case errors.Is(err, ErrUserNotFound):
		log.Debug().Str("owner", o.OwnerID).Str("game", o.SessionID).Msg("anonymous owner, score not recorded")
	case err != nil:
		log.Warn().Err(err).Str("owner", o.OwnerID).Str("game", o.SessionID).Msg("record outcome")
	default:
		log.Info().Str("owner", o.OwnerID).Str("game", o.SessionID).
			Str("winner", string(o.Winner)).Msg("outcome recorded")
	}
}
