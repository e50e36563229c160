package chunker

import (
	"strings"
	"testing"

	"semdex/internal/adapter/analyzer"
)

func newTestChunker(maxWords, overlap int) *SentenceChunker {
	return NewSentenceChunker(maxWords, overlap, analyzer.NewTokenizer(true))
}

func TestChunkEmpty(t *testing.T) {
	c := newTestChunker(500, 50)

	for _, input := range []string{"", "   ", "\n\t\n"} {
		if got := c.Chunk(input); len(got) != 0 {
			t.Errorf("Chunk(%q) = %v, want none", input, got)
		}
	}
}

func TestChunkShortText(t *testing.T) {
	c := newTestChunker(500, 50)

	chunks := c.Chunk("Revenue grew twelve percent. Margins held steady.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "Revenue grew") || !strings.Contains(chunks[0], "Margins held") {
		t.Errorf("chunk lost content: %q", chunks[0])
	}
}

func TestChunkSplitsAtSentenceBoundary(t *testing.T) {
	c := newTestChunker(10, 0)

	// Six-word sentences against a ten-word budget: one sentence per chunk.
	text := "One two three four five six. Seven eight nine ten eleven twelve. Thirteen fourteen fifteen sixteen seventeen eighteen."
	chunks := c.Chunk(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for _, chunk := range chunks {
		if !strings.HasSuffix(chunk, ".") {
			t.Errorf("chunk does not end at a sentence boundary: %q", chunk)
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	c := newTestChunker(8, 4)

	text := "Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda mu."
	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The second chunk must start with the tail of the first.
	if !strings.HasPrefix(chunks[1], "Epsilon zeta eta theta.") {
		t.Errorf("overlap missing: %q", chunks[1])
	}
}

func TestChunkKeepsUnterminatedTail(t *testing.T) {
	c := newTestChunker(500, 50)

	chunks := c.Chunk("A complete sentence. And a trailing fragment without punctuation")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "trailing fragment") {
		t.Errorf("unterminated tail dropped: %q", chunks[0])
	}
}

func TestChunkDefaults(t *testing.T) {
	c := NewSentenceChunker(0, -1, analyzer.NewTokenizer(true))
	if c.maxWords != 500 || c.overlap != 50 {
		t.Errorf("defaults not applied: maxWords=%d overlap=%d", c.maxWords, c.overlap)
	}

	// Overlap must stay below the budget or chunking cannot advance.
	c = NewSentenceChunker(10, 20, analyzer.NewTokenizer(true))
	if c.overlap >= c.maxWords {
		t.Errorf("overlap %d not clamped below budget %d", c.overlap, c.maxWords)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"periods", "First. Second. Third.", 3},
		{"mixed terminators", "Really? Yes! Done.", 3},
		{"no terminator", "just a fragment", 1},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitSentences(tt.input); len(got) != tt.want {
				t.Errorf("splitSentences(%q) = %v, want %d sentences", tt.input, got, tt.want)
			}
		})
	}
}
