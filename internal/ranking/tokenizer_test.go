package ranking

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   \t  ", []string{}},
		{"simple", "tresses simples", []string{"tresses", "simples"}},
		{"lowercases", "TRESSES Dakar", []string{"tresses", "dakar"}},
		{"drops short tokens", "le un coupe de", []string{"coupe"}},
		{"two chars dropped three kept", "ab abc", []string{"abc"}},
		{"all short", "a bc de", []string{}},
		{"accented runes count", "dégradé", []string{"dégradé"}},
		{"mixed spacing", "  coupe   homme ", []string{"coupe", "homme"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	text := "salon awa beauty plateau dakar tresses simples home service"
	tests := []struct {
		name   string
		tokens []string
		want   bool
	}{
		{"empty tokens match everything", nil, true},
		{"single token present", []string{"tresses"}, true},
		{"all tokens present", []string{"tresses", "plateau"}, true},
		{"and semantics one missing", []string{"tresses", "ouakam"}, false},
		{"absent token", []string{"manucure"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.tokens, text); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}
}
