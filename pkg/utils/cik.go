// Package utils holds small string helpers shared across edgarfetch.
package utils

import "strings"

// NormalizeCIK canonicalizes a registry company identifier: every non-digit
// character is stripped and the remainder is left-padded with zeros to ten
// characters. Applied at every identifier boundary so that "320193",
// "0000320193" and "  78-9019 " all land in the same keyspace.
func NormalizeCIK(cik string) string {
	var digits strings.Builder
	for _, r := range cik {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}
