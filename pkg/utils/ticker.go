package utils

import (
	"strings"
	"unicode"
)

// MaxTickerLen is the longest input still treated as a ticker symbol.
const MaxTickerLen = 6

// NormalizeTicker trims and uppercases a user-supplied symbol. A leading "$"
// (common in chat) is dropped.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// IsTickerLike reports whether s reads as a ticker symbol: at most
// MaxTickerLen characters once trimmed, and letters only apart from dots
// (so class shares like "BRK.B" qualify).
func IsTickerLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > MaxTickerLen {
		return false
	}
	letters := 0
	for _, r := range s {
		switch {
		case r == '.':
		case unicode.IsLetter(r):
			letters++
		default:
			return false
		}
	}
	return letters > 0
}
