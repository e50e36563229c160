package chunker

import (
	"regexp"
	"strings"

	"semdex/internal/adapter/analyzer"
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// SentenceChunker splits document text into chunks along sentence
// boundaries under a word budget, with a word overlap between
// consecutive chunks to preserve context at the seams.
type SentenceChunker struct {
	maxWords  int
	overlap   int
	tokenizer *analyzer.Tokenizer
}

// NewSentenceChunker creates a chunker with the given word budget and
// overlap. Non-positive values select the defaults (500/50).
func NewSentenceChunker(maxWords, overlap int, tokenizer *analyzer.Tokenizer) *SentenceChunker {
	if maxWords <= 0 {
		maxWords = 500
	}
	if overlap < 0 || overlap >= maxWords {
		overlap = 50
	}
	return &SentenceChunker{
		maxWords:  maxWords,
		overlap:   overlap,
		tokenizer: tokenizer,
	}
}

// Chunk splits content into chunk texts. Empty and whitespace-only
// content yields no chunks.
func (c *SentenceChunker) Chunk(content string) []string {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentWords := 0

	for _, sentence := range sentences {
		words := c.tokenizer.CountWords(sentence)

		if currentWords > 0 && currentWords+words > c.maxWords {
			chunk := strings.TrimSpace(strings.Join(current, " "))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			carry := c.overlapTail(current)
			current = carry
			currentWords = 0
			for _, s := range carry {
				currentWords += c.tokenizer.CountWords(s)
			}
		}

		current = append(current, sentence)
		currentWords += words
	}

	if chunk := strings.TrimSpace(strings.Join(current, " ")); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// overlapTail returns the trailing sentences of a finished chunk that
// fit the overlap word budget.
func (c *SentenceChunker) overlapTail(sentences []string) []string {
	if c.overlap == 0 {
		return nil
	}

	words := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		w := c.tokenizer.CountWords(sentences[i])
		if words+w > c.overlap {
			break
		}
		words += w
		start = i
	}

	if start == len(sentences) {
		return nil
	}
	tail := make([]string, len(sentences)-start)
	copy(tail, sentences[start:])
	return tail
}

// splitSentences splits text on sentence-ending punctuation, keeping
// any unterminated trailing fragment as a final sentence.
func splitSentences(text string) []string {
	var sentences []string
	end := 0

	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[loc[0]:loc[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		end = loc[1]
	}

	if tail := strings.TrimSpace(text[end:]); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}
