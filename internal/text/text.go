// Package text splits input into checkable words and puts corrections back
// together with the original punctuation and capitalization.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Token is one whitespace-delimited piece of input split around its word.
type Token struct {
	Leading  string
	Word     string
	Trailing string
}

// String reassembles the token.
func (t Token) String() string {
	return t.Leading + t.Word + t.Trailing
}

// Tokenize splits s on whitespace and peels punctuation off every field.
func Tokenize(s string) []Token {
	fields := strings.Fields(s)
	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = Split(f)
	}
	return tokens
}

// Split separates leading and trailing non-alphanumeric runes from the word.
// A field with no letters or digits is returned entirely as Leading.
func Split(field string) Token {
	start := strings.IndexFunc(field, isWordRune)
	if start < 0 {
		return Token{Leading: field}
	}
	end := strings.LastIndexFunc(field, isWordRune)
	_, size := utf8.DecodeRuneInString(field[end:])
	end += size
	return Token{
		Leading:  field[:start],
		Word:     field[start:end],
		Trailing: field[end:],
	}
}

// Join reassembles tokens separated by single spaces.
func Join(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Leading)
		b.WriteString(t.Word)
		b.WriteString(t.Trailing)
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Shape describes how a word was capitalized.
type Shape int

const (
	Lower Shape = iota
	Title
	Upper
	Mixed
)

// CapitalInfo records which rune positions of a word were uppercase.
type CapitalInfo struct {
	Shape     Shape
	positions []int
}

// ProcessCapitals returns the lowercase form of word and its capitalization.
func ProcessCapitals(word string) (string, CapitalInfo) {
	var info CapitalInfo
	letters := 0
	i := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			letters++
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			info.positions = append(info.positions, i)
		}
		i++
	}

	switch {
	case len(info.positions) == 0:
		info.Shape = Lower
	case letters > 1 && len(info.positions) == letters:
		info.Shape = Upper
	case len(info.positions) == 1 && info.positions[0] == 0:
		info.Shape = Title
	default:
		info.Shape = Mixed
	}
	return cases.Lower(language.Und).String(word), info
}

// ApplyCapitals reshapes a lowercase replacement to match the original word.
// Mixed case is applied position by position where the replacement is long enough.
func ApplyCapitals(word string, info CapitalInfo) string {
	switch info.Shape {
	case Upper:
		return cases.Upper(language.Und).String(word)
	case Title:
		return title(word)
	case Mixed:
		runes := []rune(word)
		for _, pos := range info.positions {
			if pos < len(runes) {
				runes[pos] = unicode.ToUpper(runes[pos])
			}
		}
		return string(runes)
	}
	return word
}

func title(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return word
	}
	return string(unicode.ToTitle(r)) + word[size:]
}
