package code

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	cases := []struct {
		s  string
		ok bool
	}{
		{"1234", true},
		{"9081", true},
		{"1023", true},
		{"9876", true},
		{"0123", false},
		{"1123", false},
		{"1231", false},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"-123", false},
		{" 123", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, IsValid(tc.s), "IsValid(%q)", tc.s)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(" 5678\n")
	require.NoError(t, err)
	assert.Equal(t, Code("5678"), c)

	_, err = Parse("0567")
	assert.True(t, errors.Is(err, ErrInvalidCode))
}

func TestEvaluate_KnownPairs(t *testing.T) {
	cases := []struct {
		guess, target string
		want          Feedback
	}{
		{"1234", "1234", Feedback{4, 0}},
		{"1243", "1234", Feedback{2, 2}},
		{"1234", "5678", Feedback{0, 0}},
		{"4321", "1234", Feedback{0, 4}},
		{"1567", "1234", Feedback{1, 0}},
		{"5162", "1234", Feedback{0, 2}},
		{"9081", "1089", Feedback{2, 2}},
		{"9081", "1908", Feedback{0, 4}},
	}
	for _, tc := range cases {
		got := Evaluate(MustParse(tc.guess), MustParse(tc.target))
		assert.Equalf(t, tc.want, got, "Evaluate(%s, %s)", tc.guess, tc.target)
	}
}

func TestEvaluate_Properties(t *testing.T) {
	all := All()
	// every 13th code keeps the pairwise sweep quick while covering all leads
	var sample []Code
	for i := 0; i < len(all); i += 13 {
		sample = append(sample, all[i])
	}
	for _, g := range sample {
		assert.Equal(t, Feedback{4, 0}, Evaluate(g, g))
		for _, tg := range sample {
			fb := Evaluate(g, tg)
			require.NoError(t, fb.Valid(), "%s vs %s", g, tg)
			assert.Equal(t, fb, Evaluate(tg, g), "symmetry %s/%s", g, tg)
			if g != tg {
				assert.False(t, fb.Won())
			}
		}
	}
}

// Position-marking scoring must agree with frequency counting on valid codes.
func TestEvaluate_MatchesMarkingFormulation(t *testing.T) {
	all := All()
	rng := NewRand(7)
	for i := 0; i < 5000; i++ {
		g := all[rng.Intn(len(all))]
		tg := all[rng.Intn(len(all))]
		assert.Equal(t, markingScore(g, tg), Evaluate(g, tg))
	}
}

func markingScore(guess, target Code) Feedback {
	g, tg := []byte(guess), []byte(target)
	var fb Feedback
	for i := range g {
		if g[i] == tg[i] {
			fb.Bulls++
			g[i], tg[i] = 'X', 'Y'
		}
	}
	for i := range g {
		if g[i] == 'X' {
			continue
		}
		for j := range tg {
			if tg[j] == g[i] {
				fb.Cows++
				tg[j] = 'Y'
				break
			}
		}
	}
	return fb
}

func TestFeedbackValid(t *testing.T) {
	assert.NoError(t, Feedback{0, 0}.Valid())
	assert.NoError(t, Feedback{4, 0}.Valid())
	assert.NoError(t, Feedback{1, 3}.Valid())
	for _, fb := range []Feedback{{-1, 0}, {0, -1}, {5, 0}, {0, 5}, {2, 3}, {4, 1}} {
		err := fb.Valid()
		assert.Truef(t, errors.Is(err, ErrInvalidFeedback), "%v", fb)
	}
}

func TestAll(t *testing.T) {
	all := All()
	assert.Equal(t, 4536, UniverseSize)
	require.Len(t, all, UniverseSize)
	seen := make(map[Code]bool, len(all))
	for i, c := range all {
		require.True(t, IsValid(string(c)), c)
		require.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
		if i > 0 {
			require.Less(t, string(all[i-1]), string(c))
		}
	}

	// callers get their own copy
	all[0] = "9999"
	assert.Equal(t, Code("1023"), All()[0])
}

func TestRandom(t *testing.T) {
	rng := NewRand(42)
	for i := 0; i < 2000; i++ {
		c := Random(rng)
		require.Truef(t, IsValid(string(c)), "Random produced %q", c)
	}
	assert.Equal(t, Random(NewRand(3)), Random(NewRand(3)))
	assert.True(t, IsValid(string(Random(nil))))
}
