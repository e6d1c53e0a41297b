// internal/httpserver/auth.go
//
// Authentication and player identity.
// Responsibilities:
//   - Sign/verify HS256 JWTs; carry them in an HttpOnly cookie or a Bearer header.
//   - Optional-auth middleware for game routes; required-auth for profile routes.
//   - Anonymous identity: guests get a random id cookie so their sessions
//     stay private to them.
//   - /auth/signup, /auth/login, /auth/logout, /auth/me, /stats/me,
//     /scores/leaderboard.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bullscows/internal/score"
)

const anonCookie = "bullscows_anon"

// authUser is the identity attached to a request context.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxKey string

const ctxUserKey ctxKey = "user"

func userFrom(ctx context.Context) (*authUser, bool) {
	u, ok := ctx.Value(ctxUserKey).(*authUser)
	return u, ok && u != nil
}

// ----------------------------- tokens --------------------------------------

func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// parseJWT validates signature and expiry and returns the embedded identity.
func (s *Server) parseJWT(tokenStr string) (*authUser, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, errors.New("invalid token")
	}
	return &authUser{ID: id, Username: username}, nil
}

func (s *Server) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// cookie builds a cookie with the server's Secure/SameSite policy.
func (s *Server) cookie(name, value string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
	}
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	c := s.cookie(s.cfg.CookieName, token)
	c.Expires = exp
	http.SetCookie(w, c)
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	c := s.cookie(s.cfg.CookieName, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// ----------------------------- middleware ----------------------------------

// withOptionalAuth attaches the user when a valid token is present and
// passes the request through unchanged otherwise.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := s.bearerOrCookie(r); tok != "" {
				if u, err := s.parseJWT(tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxUserKey, u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without a valid token for an existing user.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := s.bearerOrCookie(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			u, err := s.parseJWT(tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			// Ensure user still exists
			if _, err := s.ledger.FindByID(r.Context(), u.ID); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey, u)))
		})
	}
}

// ownerID identifies the requester: the user id when signed in, otherwise
// the anonymous cookie id, minting one if the request has none.
func (s *Server) ownerID(w http.ResponseWriter, r *http.Request) string {
	if u, ok := userFrom(r.Context()); ok {
		return u.ID
	}
	if c, err := r.Cookie(anonCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := "anon-" + uuid.NewString()
	c := s.cookie(anonCookie, id)
	c.MaxAge = 365 * 24 * 60 * 60
	http.SetCookie(w, c)
	return id
}

// ------------------------------ routes -------------------------------------

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authRes struct {
	User  authUser `json:"user"`
	Token string   `json:"token"`
}

func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.requireAuth()).Get("/me", s.handleMe)
	})
	s.r.With(s.requireAuth()).Get("/stats/me", s.handleStatsMe)
	s.r.Get("/scores/leaderboard", s.handleScoreLeaderboard)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	u, err := s.ledger.CreateUser(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, score.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken")
		return
	case errors.Is(err, score.ErrInvalidUsername), errors.Is(err, score.ErrInvalidPassword):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_signup", "detail": err.Error()})
		return
	case err != nil:
		log.Error().Err(err).Msg("signup")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	log.Info().Str("user", u.ID).Str("username", u.Username).Msg("user created")
	s.issueToken(w, u, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	u, err := s.ledger.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, score.ErrBadCredentials) {
		writeError(w, http.StatusUnauthorized, "bad_credentials")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	s.issueToken(w, u, http.StatusOK)
}

func (s *Server) issueToken(w http.ResponseWriter, u *score.User, status int) {
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign jwt")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, status, authRes{User: authUser{ID: u.ID, Username: u.Username}, Token: tok})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleStatsMe(w http.ResponseWriter, r *http.Request) {
	au, _ := userFrom(r.Context())
	u, err := s.ledger.FindByID(r.Context(), au.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleScoreLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.ledger.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("score leaderboard")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}
