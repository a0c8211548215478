package utils

import "strings"

const maxFilenameLen = 255

// SanitizeFilename makes a string safe to use as a file name on common
// filesystems: characters from `<>:"/\|?*` become underscores, leading and
// trailing dots and spaces are stripped, and the result is capped at 255
// characters.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), ". ")
	if runes := []rune(s); len(runes) > maxFilenameLen {
		s = string(runes[:maxFilenameLen])
	}
	return s
}
