package utils

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL_10-K_2023.html", "AAPL_10-K_2023.html"},
		{"AAPL_10-K/A_2023.html", "AAPL_10-K_A_2023.html"},
		{`bad<name>:"file"`, "bad_name___file_"},
		{"..hidden.", "hidden"},
		{"  padded.html  ", "padded.html"},
		{`a\b|c?d*e`, "a_b_c_d_e"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("x", 300) + ".html"
	got := SanitizeFilename(long)
	if len(got) != 255 {
		t.Errorf("SanitizeFilename(long) length = %d, want 255", len(got))
	}
}
