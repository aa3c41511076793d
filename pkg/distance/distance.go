// Package distance computes the unrestricted Damerau-Levenshtein edit distance
// used to key the BK-tree.
package distance

// DefaultAlphabetLength covers byte-wide text.
const DefaultAlphabetLength = 255

// Calculator computes distances for a fixed alphabet size. The alphabet size
// only sizes the last-occurrence table; runes outside of it are still handled.
// A Calculator holds no mutable state and is safe for concurrent use.
type Calculator struct {
	alphabetLength int
}

// New returns a Calculator for the given alphabet size.
// Non-positive sizes fall back to DefaultAlphabetLength.
func New(alphabetLength int) *Calculator {
	if alphabetLength <= 0 {
		alphabetLength = DefaultAlphabetLength
	}
	return &Calculator{alphabetLength: alphabetLength}
}

// AlphabetLength returns the configured alphabet size.
func (c *Calculator) AlphabetLength() int {
	return c.alphabetLength
}

var defaultCalculator = New(DefaultAlphabetLength)

// Distance is a shorthand for the default byte-wide alphabet.
func Distance(a, b string) int {
	return defaultCalculator.Distance(a, b)
}

// MaxDistance is the largest distance the tree has to provision a child slot
// for when every word is at most maxWordLength runes long.
func MaxDistance(maxWordLength int) int {
	return 2 * maxWordLength
}

// Distance returns the minimum number of insertions, deletions, substitutions
// and adjacent transpositions that turn a into b.
//
// dp is shifted by one in both directions: row and column 0 hold the
// unreachable sentinel, dp[i+1][j+1] is the distance between a[:i] and b[:j].
func (c *Calculator) Distance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	m, n := len(ra), len(rb)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	inf := m + n + 1
	dp := make([][]int, m+2)
	for i := range dp {
		dp[i] = make([]int, n+2)
	}
	dp[0][0] = inf
	for i := 0; i <= m; i++ {
		dp[i+1][0] = inf
		dp[i+1][1] = i
	}
	for j := 0; j <= n; j++ {
		dp[0][j+1] = inf
		dp[1][j+1] = j
	}

	last := newLastSeen(c.alphabetLength)
	for i := 1; i <= m; i++ {
		db := 0
		for j := 1; j <= n; j++ {
			k := last.get(rb[j-1])
			l := db

			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
				db = j
			}

			dp[i+1][j+1] = min(
				dp[i][j]+cost,
				dp[i+1][j]+1,
				dp[i][j+1]+1,
				dp[k][l]+(i-k-1)+1+(j-l-1),
			)
		}
		last.set(ra[i-1], i)
	}

	return dp[m+1][n+1]
}

// lastSeen is the da table: the last row of a in which a symbol occurred.
type lastSeen struct {
	table    []int
	overflow map[rune]int
}

func newLastSeen(alphabetLength int) *lastSeen {
	return &lastSeen{table: make([]int, alphabetLength)}
}

func (ls *lastSeen) get(r rune) int {
	if r >= 0 && int(r) < len(ls.table) {
		return ls.table[r]
	}
	return ls.overflow[r]
}

func (ls *lastSeen) set(r rune, row int) {
	if r >= 0 && int(r) < len(ls.table) {
		ls.table[r] = row
		return
	}
	if ls.overflow == nil {
		ls.overflow = make(map[rune]int)
	}
	ls.overflow[r] = row
}
