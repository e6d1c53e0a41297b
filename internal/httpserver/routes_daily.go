// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's daily game (creates or reuses session)
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// A daily game is an ordinary session whose solver secret is the day's code
// (date + salt), so play continues through /game/guess and /game/feedback.
// Each player can finish today's code once (enforced by DB): wins and losses
// are both persisted by daily.Reporter when the session ends, and only wins
// rank. An unfinished session is handed back on repeat calls.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/daily"
	"github.com/robalobadob/bullscows/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	day      string            // date the sessions map belongs to
	sessions map[string]string // today's session id keyed by owner
	mu       sync.Mutex        // guards day and sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    s.daily,
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]string),
	}
	s.dailyAPI = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns today's date key and the day's solver secret.
func (d *dailyServer) today() (string, code.Code) {
	now := d.srv.now().UTC()
	secret, _ := daily.SecretFor(now, d.salt)
	return daily.DateKey(now), secret
}

// lookup returns the owner's session id for date. Entries from earlier
// dates are dropped as soon as a new day is seen.
func (d *dailyServer) lookup(date, owner string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.day != date {
		d.day = date
		d.sessions = make(map[string]string)
	}
	id, ok := d.sessions[owner]
	return id, ok
}

func (d *dailyServer) remember(date, owner, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.day == date {
		d.sessions[owner] = id
	}
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewReq struct {
	Secret string `json:"secret"`
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID string     `json:"gameId"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	State  *game.View `json:"state,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If the player already has a DB row for today → Played=true.
// - If an unfinished session exists → return it.
// - Otherwise start a new session against today's code.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	var req dailyNewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	uid := d.srv.ownerID(w, r)
	date, secret := d.today()

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Error().Err(err).Str("owner", uid).Msg("daily lookup")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	d.srv.mu.Lock()
	defer d.srv.mu.Unlock()

	if id, ok := d.lookup(date, uid); ok {
		if sess, err := d.srv.store.Get(r.Context(), id, game.WithReporter(d.srv.reporter)); err == nil && sess.Phase() == game.PhaseInProgress {
			v := sess.View()
			writeJSON(w, http.StatusOK, dailyNewRes{GameID: id, Date: date, State: &v})
			return
		}
	}

	opts := append(d.srv.sessionOptions(uid), game.WithDaily(date))
	sess := game.New(opts...)
	if err := sess.StartWithSolverSecret(req.Secret, secret); err != nil {
		d.srv.writeGameError(w, err)
		return
	}
	if err := d.srv.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save daily session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.remember(date, uid, sess.ID)

	d.srv.metrics.GamesStarted.WithLabelValues(string(game.ModeDaily)).Inc()
	log.Info().Str("game", sess.ID).Str("owner", uid).Str("date", date).Msg("daily started")
	v := sess.View()
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.ID, Date: date, State: &v})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.today()
	} else if _, err := daily.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
