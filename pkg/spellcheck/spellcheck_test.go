package spellcheck

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordcheck/internal/logger"
	"github.com/bastiangx/wordcheck/internal/metrics"
	"github.com/bastiangx/wordcheck/pkg/bktree"
	"github.com/bastiangx/wordcheck/pkg/bloom"
)

var vocabulary = []string{"hell", "hello", "help", "hella", "world", "word", "the", "quick", "brown", "fox"}

func writeVocabulary(t *testing.T, dir string) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.DictionaryPath = filepath.Join(dir, "dictionary.txt")
	opts.TreePath = filepath.Join(dir, "bk_tree.bin")
	opts.FilterPath = filepath.Join(dir, "bloom_filter.bin")
	require.NoError(t, os.WriteFile(opts.DictionaryPath, []byte(strings.Join(vocabulary, "\n")+"\n"), 0644))
	return opts
}

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	tree, err := bktree.Build(vocabulary, 5, 255)
	require.NoError(t, err)
	filter, err := bloom.FromWords(vocabulary, bloom.DefaultFPProb)
	require.NoError(t, err)
	return NewChecker(tree, filter, 1)
}

func TestCheckKnownWord(t *testing.T) {
	c := newTestChecker(t)
	res := c.Check("Hello")
	assert.True(t, res.Known)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "Hello", res.Token)
}

func TestCheckMisspelledWord(t *testing.T) {
	c := newTestChecker(t)

	res := c.Check("helo")
	assert.False(t, res.Known)
	assert.Equal(t, []string{"hell", "hello", "help"}, res.Candidates)

	res = c.Check("wrold")
	assert.False(t, res.Known)
	assert.Equal(t, []string{"world"}, res.Candidates)

	res = c.Check("zzzzzz")
	assert.False(t, res.Known)
	assert.Empty(t, res.Candidates)
}

func TestCheckEmptyToken(t *testing.T) {
	c := newTestChecker(t)
	res := c.Check("")
	assert.False(t, res.Known)
	assert.Empty(t, res.Candidates)
	assert.Zero(t, c.Stats().Tokens)
}

func TestStats(t *testing.T) {
	c := newTestChecker(t)
	c.Check("hello")
	c.Check("helo")
	c.Check("zzzzzz")

	s := c.Stats()
	assert.Equal(t, uint64(3), s.Tokens)
	assert.Equal(t, uint64(1), s.Known)
	assert.Equal(t, uint64(2), s.Misspelled)
	assert.LessOrEqual(t, s.FilterRejects, s.Misspelled)
	assert.Equal(t, len(vocabulary), s.TreeWords)
	assert.Equal(t, 5, s.MaxWordLength)
	assert.Equal(t, 1, s.Tolerance)
	assert.NotZero(t, s.FilterSetBits)

	m := c.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensTotal.WithLabelValues(metrics.ResultKnown)))
	misses := testutil.ToFloat64(m.TokensTotal.WithLabelValues(metrics.ResultMisspelled)) +
		testutil.ToFloat64(m.TokensTotal.WithLabelValues(metrics.ResultFilterReject))
	assert.Equal(t, 2.0, misses)
	assert.Equal(t, float64(len(vocabulary)), testutil.ToFloat64(m.IndexSize.WithLabelValues("tree")))
}

func TestConcurrentChecks(t *testing.T) {
	c := newTestChecker(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, c.Check("World").Known)
				assert.Equal(t, []string{"hell", "hello", "help"}, c.Check("helo").Candidates)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(1600), c.Stats().Tokens)
}

func TestOpenBuildsAndPersists(t *testing.T) {
	opts := writeVocabulary(t, t.TempDir())
	opts.Metrics = metrics.New()

	c, err := Open(opts)
	require.NoError(t, err)
	assert.True(t, c.Check("fox").Known)
	assert.FileExists(t, opts.TreePath)
	assert.FileExists(t, opts.FilterPath)
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.IndexLoadsTotal.WithLabelValues("tree", "rebuild")))

	// second open decodes the files instead of reading the vocabulary
	require.NoError(t, os.Remove(opts.DictionaryPath))
	opts.Metrics = metrics.New()
	c, err = Open(opts)
	require.NoError(t, err)
	assert.True(t, c.Check("fox").Known)
	assert.Equal(t, []string{"hell", "hello", "help"}, c.Check("helo").Candidates)
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.IndexLoadsTotal.WithLabelValues("tree", "file")))
}

func TestOpenRebuildsCorruptIndex(t *testing.T) {
	opts := writeVocabulary(t, t.TempDir())
	_, err := Open(opts)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(opts.TreePath, []byte("garbage"), 0644))
	c, err := Open(opts)
	require.NoError(t, err)
	assert.True(t, c.Check("quick").Known)

	tree, err := bktree.Load(opts.TreePath)
	require.NoError(t, err)
	assert.Equal(t, len(vocabulary), tree.Len())
}

func TestOpenRebuildsTreeWithInflatedLength(t *testing.T) {
	opts := writeVocabulary(t, t.TempDir())
	_, err := Open(opts)
	require.NoError(t, err)

	data, err := os.ReadFile(opts.TreePath)
	require.NoError(t, err)
	// first child array: key "n" followed by a fixarray of 11 slots
	marker := []byte{0xa1, 'n', 0x9b}
	i := bytes.Index(data, marker)
	require.GreaterOrEqual(t, i, 0)
	corrupt := append([]byte(nil), data[:i+2]...)
	corrupt = append(corrupt, 0xdd, 0xff, 0xff, 0xff, 0xff)
	corrupt = append(corrupt, data[i+3:]...)
	require.NoError(t, os.WriteFile(opts.TreePath, corrupt, 0644))

	c, err := Open(opts)
	require.NoError(t, err)
	assert.True(t, c.Check("hello").Known)

	tree, err := bktree.Load(opts.TreePath)
	require.NoError(t, err)
	assert.Equal(t, len(vocabulary), tree.Len())
}

func TestOpenLogsRebuild(t *testing.T) {
	opts := writeVocabulary(t, t.TempDir())
	var logs bytes.Buffer
	opts.Logger = logger.NewWithConfig("spellcheck", &logs, log.DebugLevel, false, false, log.TextFormatter)

	_, err := Open(opts)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "spellcheck")
	assert.Contains(t, logs.String(), "Rebuilding indexes")
	assert.Contains(t, logs.String(), "Saved indexes")
}

func TestSaveRejectsSharedPath(t *testing.T) {
	c := newTestChecker(t)
	path := filepath.Join(t.TempDir(), "index.bin")
	err := Save(c.tree, c.filter, path, filepath.Dir(path)+"/sub/../index.bin")
	assert.ErrorContains(t, err, "both point to")
	assert.NoFileExists(t, path)
}

func TestOpenRebuildFlag(t *testing.T) {
	opts := writeVocabulary(t, t.TempDir())
	_, err := Open(opts)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(opts.DictionaryPath, []byte("alpha\nbeta\n"), 0644))
	opts.Rebuild = true
	c, err := Open(opts)
	require.NoError(t, err)
	assert.True(t, c.Check("alpha").Known)
	assert.False(t, c.Check("hello").Known)
}

func TestOpenMissingVocabulary(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.DictionaryPath = filepath.Join(dir, "dictionary.txt")
	opts.TreePath = filepath.Join(dir, "bk_tree.bin")
	opts.FilterPath = filepath.Join(dir, "bloom_filter.bin")

	_, err := Open(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, opts.TreePath)
}

func TestCorrect(t *testing.T) {
	c := newTestChecker(t)

	out, err := c.Correct("Helo,  wrold! The 42 quick brwn fox.", FirstCandidate)
	require.NoError(t, err)
	assert.Equal(t, "Hell, world! The 42 quick brown fox.", out)

	out, err = c.Correct("HELO wrold", KeepOriginal)
	require.NoError(t, err)
	assert.Equal(t, "HELO wrold", out)
}

func TestCorrectAsksChooserOnlyForMisspelledWords(t *testing.T) {
	c := newTestChecker(t)

	var asked []string
	chooser := ChooserFunc(func(word string, candidates []string) (string, error) {
		asked = append(asked, word)
		return candidates[len(candidates)-1], nil
	})

	out, corrections, err := c.CorrectDetailed("(Helo) the zzzzzz", chooser)
	require.NoError(t, err)
	assert.Equal(t, "(Help) the zzzzzz", out)
	assert.Equal(t, []string{"Helo"}, asked)
	require.Len(t, corrections, 1)
	assert.Equal(t, Correction{Original: "Helo", Replacement: "Help", Candidates: []string{"hell", "hello", "help"}}, corrections[0])
}

func TestCorrectChooserError(t *testing.T) {
	c := newTestChecker(t)
	boom := errors.New("boom")
	_, err := c.Correct("helo", ChooserFunc(func(string, []string) (string, error) {
		return "", boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestMisspelled(t *testing.T) {
	c := newTestChecker(t)
	results := c.Misspelled("the quikc brown fxo 1234")
	require.Len(t, results, 2)
	assert.Equal(t, "quikc", results[0].Token)
	assert.Equal(t, []string{"quick"}, results[0].Candidates)
	assert.Equal(t, "fxo", results[1].Token)
	assert.Equal(t, []string{"fox"}, results[1].Candidates)
}
