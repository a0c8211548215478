package utils

import (
	"regexp"
	"strings"
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// NormalizeTicker uppercases and trims a user-supplied ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ValidTicker reports whether the symbol is 1-5 plain uppercase letters
// after normalization. Class shares like "BRK.B" are rejected.
func ValidTicker(ticker string) bool {
	return tickerPattern.MatchString(NormalizeTicker(ticker))
}
