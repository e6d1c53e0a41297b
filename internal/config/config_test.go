package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SESSION_STORE", "STRICT_FEEDBACK", "JWT_EXPIRES_DAYS", "NODE_ENV", "SOLVER_STRATEGY"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, "5175", c.Port)
	assert.Equal(t, "memory", c.SessionStore)
	assert.Equal(t, "random", c.SolverStrategy)
	assert.True(t, c.StrictFeedback)
	assert.Equal(t, 14, c.JWTExpiresDays)
	assert.False(t, c.Production)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_STORE", "SQLite")
	t.Setenv("SOLVER_STRATEGY", "minimax")
	t.Setenv("STRICT_FEEDBACK", "false")
	t.Setenv("JWT_EXPIRES_DAYS", "not-a-number")
	t.Setenv("NODE_ENV", "production")

	c := FromEnv()
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "sqlite", c.SessionStore)
	assert.Equal(t, "minimax", c.SolverStrategy)
	assert.False(t, c.StrictFeedback)
	assert.Equal(t, 14, c.JWTExpiresDays)
	assert.True(t, c.Production)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DAILY_SALT=from_file\n"), 0o600))
	t.Setenv("DAILY_SALT", "")
	require.NoError(t, os.Unsetenv("DAILY_SALT"))

	c := Load(path)
	assert.Equal(t, "from_file", c.DailySalt)
}
