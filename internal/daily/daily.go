// Package daily picks one shared solver secret per calendar day, so every
// player cracks the same code and can be ranked against each other.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/bullscows/internal/code"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDate reads a YYYY-MM-DD key back into a UTC time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// CodeIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func CodeIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// SecretFor returns the day's code and its index in code.All().
func SecretFor(date time.Time, salt string) (code.Code, int) {
	all := code.All()
	idx := CodeIndex(date, salt, len(all))
	return all[idx], idx
}
