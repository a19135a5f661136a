package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"shorter than max", "salon", 10, "salon"},
		{"equal to max", "salon", 5, "salon"},
		{"truncated", "salon de coiffure", 8, "salon de..."},
		{"zero max returns unchanged", "salon", 0, "salon"},
		{"negative max returns unchanged", "salon", -1, "salon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}
