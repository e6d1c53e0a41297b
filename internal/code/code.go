// internal/code/code.go
//
// Codes and feedback for Bulls and Cows.
// Responsibilities:
//   - Validate 4-digit codes (digits only, no leading zero, no repeats).
//   - Score a guess against a target as bulls/cows.
//   - Enumerate the full universe of valid codes (3,024 values).
//   - Draw random codes from an injected source.
//
// Every other package goes through Evaluate; there is no second scoring path.
package code

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Length is the number of digits in a code.
const Length = 4

// UniverseSize is the count of valid codes: 9 * 9 * 8 * 7.
const UniverseSize = 9 * 9 * 8 * 7

var (
	ErrInvalidCode     = errors.New("invalid code")
	ErrInvalidFeedback = errors.New("invalid feedback")
)

// Code is a validated 4-digit string. Construct with Parse; a zero Code is empty.
type Code string

// Feedback is the bulls/cows response to a guess.
type Feedback struct {
	Bulls int `json:"bulls"`
	Cows  int `json:"cows"`
}

// Valid checks that both counts are in [0,4] and that they sum to at most 4.
func (f Feedback) Valid() error {
	if f.Bulls < 0 || f.Bulls > Length || f.Cows < 0 || f.Cows > Length || f.Bulls+f.Cows > Length {
		return fmt.Errorf("%w: %d bulls, %d cows", ErrInvalidFeedback, f.Bulls, f.Cows)
	}
	return nil
}

// Won reports whether the feedback is terminal.
func (f Feedback) Won() bool { return f.Bulls == Length }

func (f Feedback) String() string {
	return fmt.Sprintf("%dB%dC", f.Bulls, f.Cows)
}

// IsValid reports whether s is an admissible secret or guess.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	if s[0] < '1' || s[0] > '9' {
		return false
	}
	var seen [10]bool
	for i := 0; i < Length; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		if seen[c-'0'] {
			return false
		}
		seen[c-'0'] = true
	}
	return true
}

// Parse trims s and validates it as a Code.
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if !IsValid(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	return Code(s), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Code {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Code) String() string { return string(c) }

// Evaluate scores guess against target.
//
// Bulls count same-position matches. Cows are the multiset intersection of
// digits (sum over 0-9 of min(count in guess, count in target)) minus bulls.
// Inputs are assumed valid; anything shorter than Length scores as 0/0.
func Evaluate(guess, target Code) Feedback {
	if len(guess) != Length || len(target) != Length {
		return Feedback{}
	}
	var fb Feedback
	var gCount, tCount [10]int
	for i := 0; i < Length; i++ {
		if guess[i] == target[i] {
			fb.Bulls++
		}
		gCount[digit(guess[i])]++
		tCount[digit(target[i])]++
	}
	common := 0
	for d := 0; d < 10; d++ {
		common += min(gCount[d], tCount[d])
	}
	fb.Cows = common - fb.Bulls
	return fb
}

// digit maps an ASCII digit to 0..9; other bytes fold into range so
// unvalidated input cannot index out of bounds.
func digit(b byte) int {
	return int(b-'0') % 10
}

var (
	universeOnce sync.Once
	universe     []Code
)

// All returns every valid code in ascending numeric order.
// The slice is a copy; callers may filter it in place.
func All() []Code {
	universeOnce.Do(func() {
		universe = make([]Code, 0, UniverseSize)
		for n := 1023; n <= 9876; n++ {
			s := strconv.Itoa(n)
			if IsValid(s) {
				universe = append(universe, Code(s))
			}
		}
	})
	out := make([]Code, len(universe))
	copy(out, universe)
	return out
}

// Random draws a valid code: a non-zero leading digit, then three distinct
// digits from the remaining pool. A nil rng uses a time-seeded source.
func Random(rng *rand.Rand) Code {
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}
	lead := []byte("123456789")
	first := lead[rng.Intn(len(lead))]

	pool := make([]byte, 0, 9)
	for d := byte('0'); d <= '9'; d++ {
		if d != first {
			pool = append(pool, d)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	out := []byte{first, pool[0], pool[1], pool[2]}
	return Code(out)
}

// NewRand returns a seeded source for deterministic play.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
