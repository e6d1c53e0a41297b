// internal/config/config.go
//
// Environment-driven configuration.
// Loads `.env` (if present) via godotenv, then reads each setting from the
// environment with a default. Malformed numbers/bools keep the default and
// log a warning.
//
// Environment variables:
//   PORT, LOG_LEVEL, DB_PATH, SESSION_STORE (memory|sqlite),
//   SOLVER_STRATEGY (random|minimax), STRICT_FEEDBACK, JWT_SECRET,
//   JWT_EXPIRES_DAYS, COOKIE_NAME, CLIENT_ORIGIN, DAILY_SALT, NODE_ENV

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings.
type Config struct {
	Port           string
	LogLevel       string
	DBPath         string
	SessionStore   string
	SolverStrategy string
	StrictFeedback bool
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	DailySalt      string
	Production     bool
}

// Load reads `.env` files (missing files are fine) and the environment.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv()
}

// FromEnv reads the environment without touching `.env` files.
func FromEnv() Config {
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBPath:         getEnv("DB_PATH", "./data/bullscows.db"),
		SessionStore:   strings.ToLower(getEnv("SESSION_STORE", "memory")),
		SolverStrategy: strings.ToLower(getEnv("SOLVER_STRATEGY", "random")),
		StrictFeedback: envBool("STRICT_FEEDBACK", true),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "bullscows_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		Production:     os.Getenv("NODE_ENV") == "production",
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("bad integer, using default")
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Bool("default", def).Msg("bad bool, using default")
		return def
	}
	return b
}
