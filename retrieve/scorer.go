// Package retrieve ranks embedded memory items for a query: cosine
// similarity for the positive signal, a penalty against known-bad
// negative examples, and intra-result deduplication so near-identical
// chunks never spend the prompt budget twice.
package retrieve

import "math"

// DefaultBeta is the default weight of the negative-example penalty in
// the hybrid score.
const DefaultBeta = 0.35

// DefaultDedupThreshold is the similarity above which a lower-ranked
// candidate is considered redundant with an already-selected one.
const DefaultDedupThreshold = 0.9

// CosineSimilarity computes cosine similarity between two vectors.
// Returns 0 for mismatched or empty vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scorer computes the hybrid retrieval score
//
//	score = positive − beta × negative
//
// where negative is the maximum similarity of the candidate against any
// stored negative example. Candidates resembling known-bad examples are
// penalized, not excluded: one near-match negative cannot erase an
// otherwise strong positive match.
type Scorer struct {
	Beta float64
}

// NewScorer returns a Scorer with the given beta; non-positive beta
// selects DefaultBeta.
func NewScorer(beta float64) *Scorer {
	if beta <= 0 {
		beta = DefaultBeta
	}
	return &Scorer{Beta: beta}
}

// Score returns the hybrid score plus its positive and negative
// components, so callers can explain a ranking.
func (s *Scorer) Score(candidate, query []float32, negatives [][]float32) (score, positive, negative float64) {
	positive = CosineSimilarity(query, candidate)
	for _, neg := range negatives {
		if sim := CosineSimilarity(neg, candidate); sim > negative {
			negative = sim
		}
	}
	return positive - s.Beta*negative, positive, negative
}
