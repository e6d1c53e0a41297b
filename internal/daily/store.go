package daily

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bullscows/internal/game"
)

// Result is one player's solve of a daily code.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	CodeIndex int    `json:"codeIndex"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
	Won       bool   `json:"won"`
}

// Store persists daily results in the daily_results table (UNIQUE user_id, date).
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, code_index, guesses, elapsed_ms, won)
         VALUES(?,?,?,?,?,?)`, r.UserID, r.Date, r.CodeIndex, r.Guesses, r.ElapsedMs, r.Won,
	)
	return err
}

// LBRow is one leaderboard line; Username is "guest" for anonymous players.
type LBRow struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Leaderboard ranks a date's wins by fewest guesses, then fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, 'guest'), d.guesses, d.elapsed_ms
         FROM daily_results d
         LEFT JOIN users u ON u.id = d.user_id
         WHERE d.date=? AND d.won=1
         ORDER BY d.guesses ASC, d.elapsed_ms ASC, d.created_at ASC
         LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Reporter stores every finished daily game. Losses count as played so the
// day's code cannot be replayed once revealed.
type Reporter struct {
	Store *Store
	Salt  string
}

func (r *Reporter) Report(o game.Outcome) {
	if o.Mode != game.ModeDaily || o.OwnerID == "" {
		return
	}
	idx := -1
	if t, err := ParseDate(o.DailyDate); err == nil {
		_, idx = SecretFor(t, r.Salt)
	}
	err := r.Store.InsertResult(context.Background(), Result{
		UserID:    o.OwnerID,
		Date:      o.DailyDate,
		CodeIndex: idx,
		Guesses:   o.HumanTurns,
		ElapsedMs: o.Elapsed.Milliseconds(),
		Won:       o.Winner == game.WinnerHuman,
	})
	if err != nil {
		log.Warn().Err(err).Str("owner", o.OwnerID).Str("date", o.DailyDate).Msg("insert daily result")
	}
}
