package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(false)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases", "Revenue GREW", []string{"revenue", "grew"}},
		{"drops stopwords", "the revenue of the quarter", []string{"revenue", "quarter"}},
		{"drops single chars", "a b revenue", []string{"revenue"}},
		{"punctuation boundaries", "revenue, margin; profit!", []string{"revenue", "margin", "profit"}},
		{"digits kept", "q3 2026 results", []string{"q3", "2026", "results"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeKeepStopwords(t *testing.T) {
	tok := NewTokenizer(true)

	got := tok.Tokenize("the revenue of the quarter")
	want := []string{"the", "revenue", "of", "the", "quarter"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestCountWords(t *testing.T) {
	tok := NewTokenizer(false)

	tests := []struct {
		input string
		want  int
	}{
		{"one two three", 3},
		{"the a of", 3}, // stopwords still count toward word budgets
		{"", 0},
		{"hyphen-split words", 3},
	}

	for _, tt := range tests {
		if got := tok.CountWords(tt.input); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
