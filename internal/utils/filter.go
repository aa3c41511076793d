package utils

import (
	"unicode"
)

// ContainsNumbers checks if a string contains any numeric digits
func ContainsNumbers(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsLetters checks if a string has at least one letter
func ContainsLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// ShouldCheck reports whether a word is worth spell checking.
// Numbers, codes mixing digits and letters, and empty words are skipped.
func ShouldCheck(word string) bool {
	return ContainsLetters(word) && !ContainsNumbers(word)
}
