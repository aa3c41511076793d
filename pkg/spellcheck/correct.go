package spellcheck

import (
	"fmt"

	"github.com/bastiangx/wordcheck/internal/text"
	"github.com/bastiangx/wordcheck/internal/utils"
)

// Chooser picks the replacement for a misspelled word out of its candidates.
// Returning "" keeps the word as written.
type Chooser interface {
	Choose(word string, candidates []string) (string, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(word string, candidates []string) (string, error)

// Choose calls f.
func (f ChooserFunc) Choose(word string, candidates []string) (string, error) {
	return f(word, candidates)
}

// FirstCandidate takes the alphabetically first candidate.
var FirstCandidate = ChooserFunc(func(_ string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}
	return candidates[0], nil
})

// KeepOriginal never replaces anything.
var KeepOriginal = ChooserFunc(func(string, []string) (string, error) {
	return "", nil
})

// Correction records one replaced word.
type Correction struct {
	Original    string
	Replacement string
	Candidates  []string
}

// Correct splits text on whitespace, checks the word inside each field and
// asks chooser to replace misspelled words that have candidates. The original
// capitalization and surrounding punctuation are kept. Fields are joined with
// single spaces.
func (c *Checker) Correct(input string, chooser Chooser) (string, error) {
	out, _, err := c.CorrectDetailed(input, chooser)
	return out, err
}

// CorrectDetailed is Correct that also reports every replacement made.
func (c *Checker) CorrectDetailed(input string, chooser Chooser) (string, []Correction, error) {
	tokens := text.Tokenize(input)
	var corrections []Correction

	for i, tok := range tokens {
		if !utils.ShouldCheck(tok.Word) {
			continue
		}
		lower, info := text.ProcessCapitals(tok.Word)
		res := c.Check(lower)
		if res.Known || len(res.Candidates) == 0 {
			continue
		}

		choice, err := chooser.Choose(tok.Word, res.Candidates)
		if err != nil {
			return "", corrections, fmt.Errorf("failed to choose replacement for %q: %w", tok.Word, err)
		}
		if choice == "" {
			continue
		}

		replacement := text.ApplyCapitals(choice, info)
		corrections = append(corrections, Correction{
			Original:    tok.Word,
			Replacement: replacement,
			Candidates:  res.Candidates,
		})
		tokens[i].Word = replacement
	}

	return text.Join(tokens), corrections, nil
}

// Misspelled returns the check result of every misspelled word in input, in order.
func (c *Checker) Misspelled(input string) []Result {
	var results []Result
	for _, tok := range text.Tokenize(input) {
		if !utils.ShouldCheck(tok.Word) {
			continue
		}
		if res := c.Check(tok.Word); !res.Known {
			results = append(results, res)
		}
	}
	return results
}
