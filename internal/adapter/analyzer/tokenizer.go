package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into lowercase tokens with optional stopword
// removal. Used both for word-budget chunking and as the token stream
// feeding the local embedding model.
type Tokenizer struct {
	stopwords     map[string]struct{}
	keepStopwords bool
}

// NewTokenizer creates a new Tokenizer. When keepStopwords is false,
// common English stopwords are dropped from the token stream.
func NewTokenizer(keepStopwords bool) *Tokenizer {
	return &Tokenizer{
		stopwords:     defaultStopwords(),
		keepStopwords: keepStopwords,
	}
}

// Tokenize splits text into normalized tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) < 2 {
			continue
		}
		if !t.keepStopwords {
			if _, isStop := t.stopwords[word]; isStop {
				continue
			}
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// CountWords returns the number of words in text, stopwords included.
// Used by the chunker for word-budget accounting.
func (t *Tokenizer) CountWords(text string) int {
	return len(splitWords(text))
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
