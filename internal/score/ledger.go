// internal/score/ledger.go
//
// Users and per-user score keeping.
// Responsibilities:
//   - Create users with bcrypt-hashed passwords; authenticate them.
//   - Record finished games: games played, wins/losses, streak, score.
//   - Rank players for the leaderboard.
//
// Score rule: a human win is worth one point; a solver win resets the streak.

package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username taken")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrInvalidUsername = errors.New("username must be 3–24 letters, numbers or underscores")
	ErrInvalidPassword = errors.New("password must be 8–100 chars")
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	Score        int       `json:"score"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Streak       int       `json:"streak"`
}

// Ledger is the SQLite-backed user and score store.
type Ledger struct {
	db *sql.DB
}

// NewLedger binds a Ledger to an open, migrated database.
func NewLedger(db *sql.DB) *Ledger { return &Ledger{db: db} }

const userColumns = `id, username, password_hash, created_at, score, games_played, wins, losses, streak`

// CreateUser validates input, checks uniqueness, hashes the password, and inserts a new user.
func (l *Ledger) CreateUser(ctx context.Context, username, pw string) (*User, error) {
	username = normalizeUsername(username)
	if err := validateSignup(username, pw); err != nil {
		return nil, err
	}
	var exists int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create user: lookup: %w", err)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create user: hash: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(h),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := l.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("create user: insert: %w", err)
	}
	return u, nil
}

// Authenticate returns the user if the password matches.
func (l *Ledger) Authenticate(ctx context.Context, username, pw string) (*User, error) {
	u, err := l.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username)=lower(?)`,
		normalizeUsername(username))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pw)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// FindByID loads a user or returns ErrUserNotFound.
func (l *Ledger) FindByID(ctx context.Context, id string) (*User, error) {
	return l.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
}

// RecordOutcome folds one finished game into the user's stats within a transaction.
func (l *Ledger) RecordOutcome(ctx context.Context, userID string, humanWon bool) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var gp, wins, losses, streak, score int
	row := tx.QueryRowContext(ctx,
		`SELECT games_played, wins, losses, streak, score FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &losses, &streak, &score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("record outcome: %w", err)
	}
	gp++
	if humanWon {
		wins++
		streak++
		score++
	} else {
		losses++
		streak = 0
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played=?, wins=?, losses=?, streak=?, score=? WHERE id=?`,
		gp, wins, losses, streak, score, userID); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return tx.Commit()
}

// Leaderboard ranks users by score, then wins, then earliest signup.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users
        ORDER BY score DESC, wins DESC, created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (l *Ledger) scanOne(ctx context.Context, query string, args ...any) (*User, error) {
	u, err := scanUser(l.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created,
		&u.Score, &u.GamesPlayed, &u.Wins, &u.Losses, &u.Streak); err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// normalizeUsername trims whitespace; adjust here if you want stricter rules.
func normalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// validateSignup enforces basic username/password rules.
func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return ErrInvalidUsername
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ErrInvalidUsername
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return ErrInvalidPassword
	}
	return nil
}
