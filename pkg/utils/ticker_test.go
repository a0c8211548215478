package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"GOOGL", "GOOGL"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTicker(tt.input); got != tt.expected {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestValidTicker(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"AAPL", true},
		{"aapl", true},
		{" msft ", true},
		{"A", true},
		{"GOOGL", true},
		{"BRK.B", false},
		{"", false},
		{"TOOLONG", false},
		{"BF-B", false},
		{"123", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidTicker(tt.input); got != tt.valid {
				t.Errorf("ValidTicker(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}
