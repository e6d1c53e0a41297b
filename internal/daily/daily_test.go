package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bullscows/internal/code"
	"github.com/robalobadob/bullscows/internal/db"
	"github.com/robalobadob/bullscows/internal/game"
)

func TestSecretFor_Deterministic(t *testing.T) {
	day := time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC)
	later := time.Date(2026, 10, 17, 22, 59, 0, 0, time.UTC)

	c1, i1 := SecretFor(day, "salt")
	c2, i2 := SecretFor(later, "salt")
	assert.Equal(t, c1, c2)
	assert.Equal(t, i1, i2)
	assert.True(t, code.IsValid(string(c1)))
	assert.Equal(t, code.All()[i1], c1)

	// a different salt or day should usually move the code
	seen := map[code.Code]bool{}
	for d := 0; d < 30; d++ {
		c, _ := SecretFor(day.AddDate(0, 0, d), "salt")
		seen[c] = true
	}
	assert.Greater(t, len(seen), 20)
}

func TestCodeIndex_Bounds(t *testing.T) {
	assert.Equal(t, 0, CodeIndex(time.Now(), "x", 0))
	for d := 0; d < 100; d++ {
		i := CodeIndex(time.Now().AddDate(0, 0, d), "x", 7)
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 7)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", DateKey(d))
	_, err = ParseDate("17/10/2026")
	assert.Error(t, err)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewStore(conn)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	played, err := s.AlreadyPlayed(ctx, "u1", "2026-10-17")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-17", Guesses: 6, ElapsedMs: 9000, Won: true}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u2", Date: "2026-10-17", Guesses: 4, ElapsedMs: 20000, Won: true}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u3", Date: "2026-10-17", Guesses: 6, ElapsedMs: 5000, Won: true}))
	// duplicate ignored
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-17", Guesses: 1, ElapsedMs: 1, Won: true}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2026-10-18", Guesses: 3, ElapsedMs: 1}))

	played, err = s.AlreadyPlayed(ctx, "u1", "2026-10-17")
	require.NoError(t, err)
	assert.True(t, played)

	// a loss counts as played but stays off the board
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u4", Date: "2026-10-17", Guesses: 2, ElapsedMs: 1}))
	played, err = s.AlreadyPlayed(ctx, "u4", "2026-10-17")
	require.NoError(t, err)
	assert.True(t, played)

	rows, err := s.Leaderboard(ctx, "2026-10-17", 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"u2", "u3", "u1"}, []string{rows[0].UserID, rows[1].UserID, rows[2].UserID})
	assert.Equal(t, 6, rows[2].Guesses)
	assert.Equal(t, "guest", rows[0].Username)
}

func TestReporter(t *testing.T) {
	s := newStore(t)
	r := &Reporter{Store: s, Salt: "salt"}

	r.Report(game.Outcome{OwnerID: "u1", Mode: game.ModeDaily, DailyDate: "2026-10-17",
		Winner: game.WinnerHuman, HumanTurns: 5, Elapsed: 3 * time.Second})
	r.Report(game.Outcome{OwnerID: "u2", Mode: game.ModeDaily, DailyDate: "2026-10-17",
		Winner: game.WinnerSolver, HumanTurns: 9})
	r.Report(game.Outcome{OwnerID: "u3", Mode: game.ModeClassic, Winner: game.WinnerHuman})

	rows, err := s.Leaderboard(context.Background(), "2026-10-17", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].UserID)
	assert.Equal(t, 5, rows[0].Guesses)
	assert.Equal(t, int64(3000), rows[0].ElapsedMs)

	lost, err := s.AlreadyPlayed(context.Background(), "u2", "2026-10-17")
	require.NoError(t, err)
	assert.True(t, lost)
	classic, err := s.AlreadyPlayed(context.Background(), "u3", "")
	require.NoError(t, err)
	assert.False(t, classic)
}
