package score

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bullscows/internal/db"
	"github.com/robalobadob/bullscows/internal/game"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "score.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewLedger(conn)
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	u, err := l.CreateUser(ctx, "  ann_01 ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ann_01", u.Username)
	assert.NotEmpty(t, u.ID)

	_, err = l.CreateUser(ctx, "ANN_01", "another password")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := l.Authenticate(ctx, "Ann_01", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = l.Authenticate(ctx, "ann_01", "wrong password")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = l.Authenticate(ctx, "nobody", "whatever1")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestCreateUser_Validation(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	_, err := l.CreateUser(ctx, "ab", "password1")
	assert.ErrorIs(t, err, ErrInvalidUsername)
	_, err = l.CreateUser(ctx, "bad name", "password1")
	assert.ErrorIs(t, err, ErrInvalidUsername)
	_, err = l.CreateUser(ctx, "fine", "short")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestRecordOutcome(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	u, err := l.CreateUser(ctx, "bob", "password1")
	require.NoError(t, err)

	require.NoError(t, l.RecordOutcome(ctx, u.ID, true))
	require.NoError(t, l.RecordOutcome(ctx, u.ID, true))
	got, err := l.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, 2, got.Wins)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, 2, got.GamesPlayed)

	require.NoError(t, l.RecordOutcome(ctx, u.ID, false))
	got, err = l.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 3, got.GamesPlayed)

	assert.ErrorIs(t, l.RecordOutcome(ctx, "ghost", true), ErrUserNotFound)
	_, err = l.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	a, err := l.CreateUser(ctx, "alice", "password1")
	require.NoError(t, err)
	b, err := l.CreateUser(ctx, "carol", "password1")
	require.NoError(t, err)
	require.NoError(t, l.RecordOutcome(ctx, b.ID, true))

	rows, err := l.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, b.ID, rows[0].ID)
	assert.Equal(t, a.ID, rows[1].ID)
	assert.NotEmpty(t, rows[0].PasswordHash)
}

func TestReporter(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	u, err := l.CreateUser(ctx, "dave", "password1")
	require.NoError(t, err)

	r := NewReporter(l)
	r.Report(game.Outcome{OwnerID: u.ID, Winner: game.WinnerHuman})
	r.Report(game.Outcome{OwnerID: "anon-123", Winner: game.WinnerHuman})
	r.Report(game.Outcome{Winner: game.WinnerSolver})

	got, err := l.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, 1, got.GamesPlayed)
}
