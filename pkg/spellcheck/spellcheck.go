/*
Package spellcheck ties the vocabulary, the Bloom filter and the BK-tree into
a checker.

Open acquires both indexes from their files, or rebuilds them from the
vocabulary when either file is missing or fails to decode, and writes the
rebuilt files back:

	checker, err := spellcheck.Open(spellcheck.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	res := checker.Check("helo")
	// res.Known == false, res.Candidates == [hell hello help]

A token the filter rejects is certainly not a vocabulary word, so the exact
tree lookup is skipped and only the range query runs. Candidates come back in
alphabetical order; they are not ranked.

Once built, a Checker is read-only and safe for concurrent use.
*/
package spellcheck

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bastiangx/wordcheck/internal/logger"
	"github.com/bastiangx/wordcheck/internal/metrics"
	"github.com/bastiangx/wordcheck/pkg/bktree"
	"github.com/bastiangx/wordcheck/pkg/bloom"
	"github.com/bastiangx/wordcheck/pkg/dictionary"
	"github.com/bastiangx/wordcheck/pkg/distance"
	"github.com/bastiangx/wordcheck/pkg/persist"
)

const (
	DefaultDictionaryPath = "dictionary.txt"
	DefaultTreePath       = "bk_tree.bin"
	DefaultFilterPath     = "bloom_filter.bin"
	DefaultTolerance      = 1
)

// Options configures Open.
type Options struct {
	DictionaryPath string
	TreePath       string
	FilterPath     string
	AlphabetLength int
	FPProb         float64
	Tolerance      int
	// Rebuild ignores existing index files.
	Rebuild bool
	// Metrics receives checker activity. A private set is created when nil.
	Metrics *metrics.Metrics
	// Logger reports index loading and rebuilds. Defaults to a "spellcheck"
	// logger on stderr at the global level.
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.New("spellcheck")
}

// DefaultOptions returns options using the default file names in the working directory.
func DefaultOptions() Options {
	return Options{
		DictionaryPath: DefaultDictionaryPath,
		TreePath:       DefaultTreePath,
		FilterPath:     DefaultFilterPath,
		AlphabetLength: distance.DefaultAlphabetLength,
		FPProb:         bloom.DefaultFPProb,
		Tolerance:      DefaultTolerance,
	}
}

// Result is the outcome of checking one token.
type Result struct {
	Token      string
	Known      bool
	Candidates []string
}

// Stats is a snapshot of checker counters and index shape.
type Stats struct {
	Tokens        uint64
	Known         uint64
	Misspelled    uint64
	FilterRejects uint64

	TreeWords     int
	TreeCapacity  int
	TreeDepth     int
	MaxWordLength int
	FilterBits    uint64
	FilterSetBits uint64
	HashCount     uint32
	Tolerance     int
}

// Checker answers spelling queries against one tree and one filter.
type Checker struct {
	tree      *bktree.Tree
	filter    *bloom.Filter
	tolerance int
	metrics   *metrics.Metrics
	// casers are stateful, one per goroutine
	casers sync.Pool

	tokens        atomic.Uint64
	known         atomic.Uint64
	misspelled    atomic.Uint64
	filterRejects atomic.Uint64
}

// NewChecker wraps indexes that are already in memory.
func NewChecker(tree *bktree.Tree, filter *bloom.Filter, tolerance int) *Checker {
	return newChecker(tree, filter, tolerance, nil)
}

func newChecker(tree *bktree.Tree, filter *bloom.Filter, tolerance int, m *metrics.Metrics) *Checker {
	if m == nil {
		m = metrics.New()
	}
	if tolerance < 0 {
		tolerance = 0
	}
	m.IndexSize.WithLabelValues("tree").Set(float64(tree.Len()))
	m.IndexSize.WithLabelValues("filter").Set(float64(filter.SetBits()))
	return &Checker{
		tree:      tree,
		filter:    filter,
		tolerance: tolerance,
		metrics:   m,
		casers: sync.Pool{New: func() any {
			c := cases.Lower(language.Und)
			return &c
		}},
	}
}

func (c *Checker) lower(s string) string {
	caser := c.casers.Get().(*cases.Caser)
	defer c.casers.Put(caser)
	return caser.String(s)
}

// Open loads the tree and filter, rebuilding both from the vocabulary when
// either one cannot be decoded.
func Open(opts Options) (*Checker, error) {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	lg := opts.logger()
	opts.Logger = lg

	if !opts.Rebuild {
		tree, filter, err := loadIndexes(opts)
		if err == nil {
			lg.Debugf("Loaded indexes: %d words in tree, %d bit filter", tree.Len(), filter.Size)
			m.IndexLoadsTotal.WithLabelValues("tree", "file").Inc()
			m.IndexLoadsTotal.WithLabelValues("filter", "file").Inc()
			return newChecker(tree, filter, opts.Tolerance, m), nil
		}
		if !errors.Is(err, persist.ErrDecode) {
			return nil, err
		}
		lg.Warnf("Rebuilding indexes from %s: %v", opts.DictionaryPath, err)
	}

	tree, filter, err := Build(opts)
	if err != nil {
		return nil, err
	}
	m.IndexLoadsTotal.WithLabelValues("tree", "rebuild").Inc()
	m.IndexLoadsTotal.WithLabelValues("filter", "rebuild").Inc()

	if err := Save(tree, filter, opts.TreePath, opts.FilterPath); err != nil {
		return nil, err
	}
	lg.Debugf("Saved indexes to %s and %s", opts.TreePath, opts.FilterPath)
	return newChecker(tree, filter, opts.Tolerance, m), nil
}

func loadIndexes(opts Options) (*bktree.Tree, *bloom.Filter, error) {
	tree, err := bktree.Load(opts.TreePath)
	if err != nil {
		return nil, nil, err
	}
	filter, err := bloom.Load(opts.FilterPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.AlphabetLength > 0 && tree.AlphabetLength != opts.AlphabetLength {
		opts.logger().Warnf("Tree %s was built with alphabet length %d, not %d", opts.TreePath, tree.AlphabetLength, opts.AlphabetLength)
	}
	return tree, filter, nil
}

// Build reads the vocabulary and constructs both indexes in memory.
func Build(opts Options) (*bktree.Tree, *bloom.Filter, error) {
	vocab, err := dictionary.Load(opts.DictionaryPath, opts.AlphabetLength)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	start := time.Now()
	tree, err := bktree.Build(vocab.Words, vocab.MaxWordLength, vocab.AlphabetLength)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build tree: %w", err)
	}
	fpProb := opts.FPProb
	if fpProb == 0 {
		fpProb = bloom.DefaultFPProb
	}
	filter, err := bloom.FromWords(vocab.Words, fpProb)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build filter: %w", err)
	}

	opts.logger().Debugf("Built indexes for %d words in %v: tree depth %d, filter %d bits x %d hashes",
		vocab.Len(), time.Since(start), tree.Depth(), filter.Size, filter.HashCount)
	return tree, filter, nil
}

// Save writes both indexes. The two files are independent and written concurrently,
// so they must not share a path.
func Save(tree *bktree.Tree, filter *bloom.Filter, treePath, filterPath string) error {
	if filepath.Clean(treePath) == filepath.Clean(filterPath) {
		return fmt.Errorf("tree and filter both point to %s", treePath)
	}
	var g errgroup.Group
	g.Go(func() error {
		if err := tree.Save(treePath); err != nil {
			return fmt.Errorf("failed to save tree to %s: %w", treePath, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := filter.Save(filterPath); err != nil {
			return fmt.Errorf("failed to save filter to %s: %w", filterPath, err)
		}
		return nil
	})
	return g.Wait()
}

// Check classifies one token. The token is lowercased before any lookup.
func (c *Checker) Check(token string) Result {
	return c.CheckTolerance(token, c.tolerance)
}

// CheckTolerance is Check with a caller supplied edit distance bound.
func (c *Checker) CheckTolerance(token string, tolerance int) Result {
	res := Result{Token: token}
	word := c.lower(token)
	if word == "" {
		return res
	}
	c.tokens.Add(1)

	if c.filter.Lookup(word) {
		if c.tree.Contains(word) {
			c.known.Add(1)
			c.metrics.TokensTotal.WithLabelValues(metrics.ResultKnown).Inc()
			res.Known = true
			return res
		}
		c.metrics.TokensTotal.WithLabelValues(metrics.ResultMisspelled).Inc()
	} else {
		c.filterRejects.Add(1)
		c.metrics.TokensTotal.WithLabelValues(metrics.ResultFilterReject).Inc()
	}
	c.misspelled.Add(1)

	start := time.Now()
	res.Candidates = c.tree.QueryRange(word, tolerance).ToSlice()
	c.metrics.QueryLatency.Observe(time.Since(start).Seconds())
	c.metrics.CandidatesCount.Observe(float64(len(res.Candidates)))

	slices.Sort(res.Candidates)
	return res
}

// Tolerance returns the maximum edit distance of a candidate.
func (c *Checker) Tolerance() int {
	return c.tolerance
}

// Metrics returns the collectors this checker reports to.
func (c *Checker) Metrics() *metrics.Metrics {
	return c.metrics
}

// Stats returns a snapshot of the counters and index shape.
func (c *Checker) Stats() Stats {
	return Stats{
		Tokens:        c.tokens.Load(),
		Known:         c.known.Load(),
		Misspelled:    c.misspelled.Load(),
		FilterRejects: c.filterRejects.Load(),
		TreeWords:     c.tree.Len(),
		TreeCapacity:  c.tree.Capacity(),
		TreeDepth:     c.tree.Depth(),
		MaxWordLength: c.tree.MaxWordLength,
		FilterBits:    c.filter.Size,
		FilterSetBits: c.filter.SetBits(),
		HashCount:     c.filter.HashCount,
		Tolerance:     c.tolerance,
	}
}
