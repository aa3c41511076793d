package distance

import (
	"fmt"
	"testing"

	"github.com/hbollon/go-edlib"
	"github.com/stretchr/testify/assert"
)

var samplePairs = [][2]string{
	{"", ""},
	{"a", ""},
	{"", "abc"},
	{"hello", "hell"},
	{"ab", "ba"},
	{"ca", "abc"},
	{"kitten", "sitting"},
	{"saturday", "sunday"},
	{"book", "back"},
	{"abcdef", "badcfe"},
	{"receive", "recieve"},
	{"world", "hell"},
	{"a cat", "an act"},
	{"naïve", "naive"},
	{"日本語", "本日語"},
}

func TestDistanceKnownValues(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"hello", "hell", 1},
		{"ab", "ba", 1},
		{"ca", "abc", 2},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"book", "books", 1},
		{"hello", "hallo", 1},
		{"hell", "world", 4},
		{"abcdef", "badcfe", 3},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			assert.Equal(t, tc.expected, Distance(tc.a, tc.b))
		})
	}
}

func TestDistanceMatchesEdlib(t *testing.T) {
	for _, p := range samplePairs {
		assert.Equal(t, edlib.DamerauLevenshteinDistance(p[0], p[1]), Distance(p[0], p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	for _, p := range samplePairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestDistanceIdentity(t *testing.T) {
	for _, p := range samplePairs {
		for _, s := range p {
			assert.Zero(t, Distance(s, s), "%q", s)
		}
		if p[0] != p[1] {
			assert.NotZero(t, Distance(p[0], p[1]), "%q vs %q", p[0], p[1])
		}
	}
}

// Runes outside the alphabet go through the overflow table and must give the
// same answer as a calculator whose alphabet covers them.
func TestDistanceOutsideAlphabet(t *testing.T) {
	narrow := New(128)
	wide := New(0x10000)
	for _, p := range samplePairs {
		assert.Equal(t, wide.Distance(p[0], p[1]), narrow.Distance(p[0], p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestNewDefaultsAlphabet(t *testing.T) {
	assert.Equal(t, DefaultAlphabetLength, New(0).AlphabetLength())
	assert.Equal(t, 26, New(26).AlphabetLength())
}

func TestMaxDistanceBound(t *testing.T) {
	assert.Equal(t, 10, MaxDistance(5))
	for _, p := range samplePairs {
		longest := max(len([]rune(p[0])), len([]rune(p[1])))
		assert.LessOrEqual(t, Distance(p[0], p[1]), MaxDistance(longest))
	}
}

func BenchmarkDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Distance("congratulations", "congratilations")
	}
}
