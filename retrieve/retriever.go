package retrieve

import (
	"context"
	"log"
	"sort"

	"github.com/becomeliminal/strata-go-sdk/core"
	"github.com/becomeliminal/strata-go-sdk/tier"
)

// overfetchFactor widens the similarity search so that scoring and
// dedup still leave enough candidates to fill topK.
const overfetchFactor = 3

// Result is one ranked candidate with the components behind its rank.
type Result struct {
	Item core.MemoryItem

	// Score is positive − beta × negative.
	Score float64

	// Positive is the cosine similarity to the query.
	Positive float64

	// Negative is the highest similarity against any negative example.
	Negative float64

	seq uint64
}

// Retriever runs similarity search over the long-vector tier and turns
// raw matches into a ranked, deduplicated candidate list.
type Retriever struct {
	index  *tier.VectorStore
	scorer *Scorer

	// DedupThreshold drops a candidate whose similarity to an
	// already-selected higher-ranked candidate exceeds it.
	DedupThreshold float64
}

// NewRetriever wires a retriever over the given vector tier.
func NewRetriever(index *tier.VectorStore, scorer *Scorer, dedupThreshold float64) *Retriever {
	if scorer == nil {
		scorer = NewScorer(0)
	}
	if dedupThreshold <= 0 {
		dedupThreshold = DefaultDedupThreshold
	}
	return &Retriever{index: index, scorer: scorer, DedupThreshold: dedupThreshold}
}

// Retrieve returns up to topK candidates for the query vector in the
// namespace, ranked by hybrid score. Ordering is deterministic: equal
// scores break by insertion recency, more recent first. Candidates too
// similar to an already-selected result are dropped.
func (r *Retriever) Retrieve(ctx context.Context, namespace string, query []float32, negatives [][]float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, nil
	}
	matches, err := r.index.SimilaritySearch(ctx, namespace, query, topK*overfetchFactor)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	scored := make([]Result, 0, len(matches))
	for _, m := range matches {
		score, pos, neg := r.scorer.Score(m.Item.Embedding, query, negatives)
		scored = append(scored, Result{
			Item:     m.Item,
			Score:    score,
			Positive: pos,
			Negative: neg,
			seq:      m.Seq,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].seq > scored[j].seq
	})

	selected := make([]Result, 0, topK)
	for _, cand := range scored {
		if r.redundant(cand, selected) {
			continue
		}
		selected = append(selected, cand)
		if len(selected) == topK {
			break
		}
	}

	log.Printf("[RETRIEVE] %d matches -> %d selected for namespace %s",
		len(matches), len(selected), namespace)
	return selected, nil
}

// redundant reports whether the candidate duplicates an already-selected
// result beyond the redundancy threshold.
func (r *Retriever) redundant(cand Result, selected []Result) bool {
	for _, s := range selected {
		if CosineSimilarity(cand.Item.Embedding, s.Item.Embedding) > r.DedupThreshold {
			return true
		}
	}
	return false
}
