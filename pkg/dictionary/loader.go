// Package dictionary loads the vocabulary the spell-check indexes are built from.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bastiangx/wordcheck/pkg/distance"
)

// Vocabulary is an ordered list of distinct lowercase words.
// Words keeps first-seen order, which is also the BK-tree insertion order.
type Vocabulary struct {
	Words          []string
	MaxWordLength  int
	AlphabetLength int

	trie  *patricia.Trie
	lower cases.Caser
}

// LoaderStats describes what happened while reading a vocabulary file.
type LoaderStats struct {
	Lines      int
	Words      int
	Duplicates int
	Blank      int
}

// NewVocabulary returns an empty vocabulary for the given alphabet size.
func NewVocabulary(alphabetLength int) *Vocabulary {
	if alphabetLength <= 0 {
		alphabetLength = distance.DefaultAlphabetLength
	}
	return &Vocabulary{
		AlphabetLength: alphabetLength,
		trie:           patricia.NewTrie(),
		lower:          cases.Lower(language.Und),
	}
}

// FromWords builds a vocabulary from an in-memory list.
func FromWords(words []string, alphabetLength int) *Vocabulary {
	v := NewVocabulary(alphabetLength)
	for _, w := range words {
		v.Add(w)
	}
	return v
}

// Normalize trims and lowercases a word the way vocabulary entries are stored.
func (v *Vocabulary) Normalize(word string) string {
	return v.lower.String(strings.TrimSpace(word))
}

// Add normalizes word and appends it unless it is blank or already present.
// It reports whether the word was added.
func (v *Vocabulary) Add(word string) bool {
	word = v.Normalize(word)
	if word == "" {
		return false
	}
	if !v.trie.Insert(patricia.Prefix(word), len(v.Words)) {
		return false
	}
	v.Words = append(v.Words, word)
	if n := utf8.RuneCountInString(word); n > v.MaxWordLength {
		v.MaxWordLength = n
	}
	return true
}

// Has reports whether the normalized word is in the vocabulary.
func (v *Vocabulary) Has(word string) bool {
	return v.trie.Match(patricia.Prefix(v.Normalize(word)))
}

// Len returns the number of distinct words.
func (v *Vocabulary) Len() int {
	return len(v.Words)
}

// WithPrefix returns up to limit words starting with prefix, in insertion
// order. A limit <= 0 returns all of them.
func (v *Vocabulary) WithPrefix(prefix string, limit int) []string {
	var slots []int
	err := v.trie.VisitSubtree(patricia.Prefix(v.Normalize(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		slots = append(slots, item.(int))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting vocabulary subtree: %v", err)
		return nil
	}

	slices.Sort(slots)
	if limit > 0 && len(slots) > limit {
		slots = slots[:limit]
	}
	words := make([]string, len(slots))
	for i, s := range slots {
		words[i] = v.Words[s]
	}
	return words
}

// Read parses one word per line from r.
func Read(r io.Reader, alphabetLength int) (*Vocabulary, LoaderStats, error) {
	v := NewVocabulary(alphabetLength)
	var stats LoaderStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			stats.Blank++
			continue
		}
		if !v.Add(line) {
			stats.Duplicates++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	stats.Words = v.Len()
	return v, stats, nil
}

// Load reads a plain text vocabulary file.
func Load(path string, alphabetLength int) (*Vocabulary, error) {
	if err := ValidateFileFormat(path, FormatText); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary %s: %w", path, err)
	}
	defer file.Close()

	v, stats, err := Read(file, alphabetLength)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if v.Len() == 0 {
		return nil, fmt.Errorf("vocabulary %s has no words", path)
	}

	log.Debugf("Loaded vocabulary %s: %d words (%d lines, %d duplicates, %d blank), max length %d",
		path, stats.Words, stats.Lines, stats.Duplicates, stats.Blank, v.MaxWordLength)
	return v, nil
}
