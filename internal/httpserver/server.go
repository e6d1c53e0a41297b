// internal/httpserver/server.go
//
// HTTP server wiring for the Bulls and Cows backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints (optional auth): /game/new, /game/start, /game/guess,
//     /game/feedback, /game/reset, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/score endpoints: /auth/*, /stats/me, /scores/leaderboard.
//
// Notes:
//   - Sessions belong to the requester (user id, or anonymous cookie id);
//     other requesters get 404.
//   - Session events are serialized by a server-wide mutex so each request is
//     one atomic step of the turn protocol.
//   - Finished games fan out to metrics, the score ledger and daily results
//     through game.Reporter.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/config"
	"github.com/robalobadob/bullscows/internal/daily"
	"github.com/robalobadob/bullscows/internal/game"
	"github.com/robalobadob/bullscows/internal/metrics"
	"github.com/robalobadob/bullscows/internal/score"
	"github.com/robalobadob/bullscows/internal/solver"
	"github.com/robalobadob/bullscows/internal/store"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Store    store.Store
	Ledger   *score.Ledger
	Daily    *daily.Store
	Registry *prometheus.Registry
}

// Server bundles router, session store, score ledger and metrics.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	ledger  *score.Ledger
	daily   *daily.Store
	metrics *metrics.Metrics
	reg     *prometheus.Registry

	mu       sync.Mutex // serializes session events
	reporter game.Reporter
	now      func() time.Time
	dailyAPI *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, deps Deps) *Server {
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		store:   deps.Store,
		ledger:  deps.Ledger,
		daily:   deps.Daily,
		metrics: metrics.New(reg),
		reg:     reg,
		now:     time.Now,
	}
	s.reporter = game.Reporters{
		s.metrics,
		score.NewReporter(s.ledger),
		&daily.Reporter{Store: s.daily, Salt: cfg.DailySalt},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"bullscows","endpoints":["/health","/metrics","POST /game/new","POST /game/guess","POST /game/feedback","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Game endpoints: optional auth (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/start", s.handleStart)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/feedback", s.handleFeedback)
		r.Post("/game/reset", s.handleReset)
		r.Get("/game/{id}", s.handleGetGame)

		// Daily Challenge: optional auth
		s.mountDaily(r)
	})

	// Auth + profile/score
	s.mountAuthRoutes()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the payload for POST /game/new and POST /game/start.
type newGameReq struct {
	GameID string `json:"gameId"` // /game/start only
	Secret string `json:"secret"` // the human's secret code
}
type newGameRes struct {
	GameID string    `json:"gameId"`
	State  game.View `json:"state"`
}

// sessionOptions are the per-session settings derived from config.
func (s *Server) sessionOptions(owner string) []game.Option {
	return []game.Option{
		game.WithOwner(owner),
		game.WithStrategy(solver.StrategyByName(s.cfg.SolverStrategy)),
		game.WithStrictFeedback(s.cfg.StrictFeedback),
		game.WithReporter(s.reporter),
		game.WithClock(s.now),
	}
}

// handleNewGame creates a session for the requester and starts it with their secret.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	owner := s.ownerID(w, r)
	sess := game.New(s.sessionOptions(owner)...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sess.Start(req.Secret); err != nil {
		s.writeGameError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.metrics.GamesStarted.WithLabelValues(string(sess.Mode)).Inc()
	log.Info().Str("game", sess.ID).Str("owner", owner).Msg("game started")
	writeJSON(w, http.StatusOK, newGameRes{GameID: sess.ID, State: sess.View()})
}

// errDailyPlayed rejects restarting a daily game whose result is recorded.
var errDailyPlayed = errors.New("daily already played")

// handleStart restarts an existing (reset) session with a new secret.
// Daily sessions keep their day's code and cannot restart once finished.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.withSession(w, r, req.GameID, func(sess *game.Session) (any, error) {
		var solverSecret code.Code
		if sess.Mode == game.ModeDaily {
			day, err := daily.ParseDate(sess.DailyDate)
			if err != nil {
				return nil, err
			}
			played, err := s.daily.AlreadyPlayed(r.Context(), sess.OwnerID, sess.DailyDate)
			if err != nil {
				return nil, err
			}
			if played {
				return nil, errDailyPlayed
			}
			solverSecret, _ = daily.SecretFor(day, s.cfg.DailySalt)
		}
		if err := sess.StartWithSolverSecret(req.Secret, solverSecret); err != nil {
			return nil, err
		}
		s.metrics.GamesStarted.WithLabelValues(string(sess.Mode)).Inc()
		return newGameRes{GameID: sess.ID, State: sess.View()}, nil
	})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Turn  game.Turn `json:"turn"`
	State game.View `json:"state"`
}

// handleGuess scores the human's guess and returns the solver's reply guess.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.withSession(w, r, req.GameID, func(sess *game.Session) (any, error) {
		turn, err := sess.SubmitHumanGuess(req.Guess)
		if err != nil {
			return nil, err
		}
		return guessRes{Turn: turn, State: sess.View()}, nil
	})
}

// feedbackReq/Res payloads for POST /game/feedback.
type feedbackReq struct {
	GameID string `json:"gameId"`
	Bulls  int    `json:"bulls"`
	Cows   int    `json:"cows"`
}
type feedbackRes struct {
	Record game.GuessRecord `json:"record"`
	State  game.View        `json:"state"`
}

// handleFeedback applies the human's bulls/cows to the pending solver guess.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.withSession(w, r, req.GameID, func(sess *game.Session) (any, error) {
		rec, err := sess.SubmitSolverFeedback(req.Bulls, req.Cows)
		if err != nil {
			return nil, err
		}
		s.metrics.CandidatesAfterFeedback.Observe(float64(sess.CandidateCount()))
		return feedbackRes{Record: rec, State: sess.View()}, nil
	})
}

type resetReq struct {
	GameID string `json:"gameId"`
}

// handleReset clears the session back to not_started.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.withSession(w, r, req.GameID, func(sess *game.Session) (any, error) {
		sess.Reset()
		return sess.View(), nil
	})
}

// handleGetGame returns the requester's view of a session.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.loadOwned(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// withSession loads the requester's session, applies fn under the event
// mutex and saves the result. fn errors are mapped to HTTP statuses; the
// session is not saved when fn fails.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, id string, fn func(*game.Session) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.loadOwned(w, r, id)
	if !ok {
		return
	}
	out, err := fn(sess)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Str("game", sess.ID).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// loadOwned fetches a session and checks it belongs to the requester.
// It writes the error response itself and reports false on failure.
func (s *Server) loadOwned(w http.ResponseWriter, r *http.Request, id string) (*game.Session, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_game_id")
		return nil, false
	}
	sess, err := s.store.Get(r.Context(), id, game.WithReporter(s.reporter))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("game", id).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return nil, false
	}
	if sess.OwnerID != s.ownerID(w, r) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}

// writeGameError maps domain errors onto status codes and counts rejected input.
func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, code.ErrInvalidCode):
		s.metrics.InvalidInput.WithLabelValues("code").Inc()
		writeError(w, http.StatusBadRequest, "invalid_code")
	case errors.Is(err, code.ErrInvalidFeedback):
		s.metrics.InvalidInput.WithLabelValues("feedback").Inc()
		writeError(w, http.StatusBadRequest, "invalid_feedback")
	case errors.Is(err, game.ErrInconsistentFeedback):
		s.metrics.InvalidInput.WithLabelValues("inconsistent").Inc()
		writeError(w, http.StatusUnprocessableEntity, "inconsistent_feedback")
	case errors.Is(err, game.ErrNotStarted):
		writeError(w, http.StatusConflict, "not_started")
	case errors.Is(err, game.ErrAlreadyStarted):
		writeError(w, http.StatusConflict, "already_started")
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, "game_over")
	case errors.Is(err, game.ErrAwaitingFeedback):
		writeError(w, http.StatusConflict, "awaiting_feedback")
	case errors.Is(err, game.ErrNoPendingGuess):
		writeError(w, http.StatusConflict, "no_pending_guess")
	case errors.Is(err, errDailyPlayed):
		writeError(w, http.StatusConflict, "daily_played")
	default:
		log.Error().Err(err).Msg("game error")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
