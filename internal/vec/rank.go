package vec

import (
	"sort"
	"time"
)

// Candidate is a scored unit prior to top-K selection.
type Candidate struct {
	UnitID      string
	DocumentID  string
	Score       float64
	GeneratedAt time.Time
}

// Rank orders candidates by descending score, breaking ties by most
// recent generation time and then by unit ID for determinism, and
// trims the result to topK.
func Rank(candidates []Candidate, topK int) []Candidate {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if !candidates[i].GeneratedAt.Equal(candidates[j].GeneratedAt) {
			return candidates[i].GeneratedAt.After(candidates[j].GeneratedAt)
		}
		return candidates[i].UnitID < candidates[j].UnitID
	})

	if topK < 0 {
		topK = 0
	}
	if topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates
}
