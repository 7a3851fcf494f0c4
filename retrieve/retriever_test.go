package retrieve_test

import (
	"context"
	"math"
	"testing"

	"github.com/becomeliminal/strata-go-sdk/core"
	"github.com/becomeliminal/strata-go-sdk/retrieve"
	"github.com/becomeliminal/strata-go-sdk/tier"
)

// unit normalizes a vector so chromem and the scorer see the same
// geometry.
func unit(v ...float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func indexDocs(t *testing.T, vs *tier.VectorStore, docs map[string][]float32) {
	t.Helper()
	ctx := context.Background()
	for key, emb := range docs {
		item := core.MemoryItem{ID: key, Role: core.RoleAssistant, Content: "content " + key}
		if err := vs.PutVector(ctx, "ns", key, emb, item); err != nil {
			t.Fatalf("Failed to index %s: %v", key, err)
		}
	}
}

func TestRetriever_RanksBySimilarity(t *testing.T) {
	vs := tier.NewVectorStore(tier.Config{Capacity: 64}, nil, nil)
	indexDocs(t, vs, map[string][]float32{
		"close":   unit(1, 0.1, 0),
		"far":     unit(0, 1, 0),
		"closest": unit(1, 0, 0),
	})

	r := retrieve.NewRetriever(vs, retrieve.NewScorer(0.35), 0.999)
	results, err := r.Retrieve(context.Background(), "ns", unit(1, 0, 0), nil, 2)
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Item.ID != "closest" || results[1].Item.ID != "close" {
		t.Errorf("Expected [closest close], got [%s %s]", results[0].Item.ID, results[1].Item.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("Results must be ordered by descending score")
	}
}

func TestRetriever_NegativeExamplesDemote(t *testing.T) {
	vs := tier.NewVectorStore(tier.Config{Capacity: 64}, nil, nil)

	// Two candidates nearly equidistant from the query; one sits on top
	// of a negative example.
	indexDocs(t, vs, map[string][]float32{
		"clean":  unit(1, 0.2, 0),
		"tained": unit(1, 0, 0.2),
	})

	r := retrieve.NewRetriever(vs, retrieve.NewScorer(0.35), 0.999)
	query := unit(1, 0, 0)
	negative := unit(1, 0, 0.2)

	results, err := r.Retrieve(context.Background(), "ns", query, [][]float32{negative}, 2)
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Item.ID != "clean" {
		t.Errorf("Expected penalized candidate demoted, got %s first", results[0].Item.ID)
	}
	if results[1].Negative <= results[0].Negative {
		t.Error("Expected the demoted candidate to carry the larger negative component")
	}
}

func TestRetriever_DropsRedundantCandidates(t *testing.T) {
	vs := tier.NewVectorStore(tier.Config{Capacity: 64}, nil, nil)
	indexDocs(t, vs, map[string][]float32{
		"a":     unit(1, 0, 0),
		"a-bis": unit(1, 0.001, 0), // nearly identical to a
		"b":     unit(0, 1, 0),
	})

	r := retrieve.NewRetriever(vs, retrieve.NewScorer(0.35), 0.99)
	results, err := r.Retrieve(context.Background(), "ns", unit(1, 0.1, 0), nil, 3)
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected redundant twin dropped, got %d results", len(results))
	}
	seen := map[string]bool{}
	for _, res := range results {
		seen[res.Item.ID] = true
	}
	if seen["a"] == seen["a-bis"] {
		t.Error("Exactly one of the near-identical twins should survive")
	}
	if !seen["b"] {
		t.Error("Distinct candidate must survive dedup")
	}
}

func TestRetriever_RecencyBreaksTies(t *testing.T) {
	vs := tier.NewVectorStore(tier.Config{Capacity: 64}, nil, nil)
	ctx := context.Background()

	// Identical embeddings, inserted in order; disable dedup so both
	// survive to the tie-break.
	emb := unit(1, 0, 0)
	for _, key := range []string{"older", "newer"} {
		item := core.MemoryItem{ID: key, Role: core.RoleAssistant, Content: key}
		if err := vs.PutVector(ctx, "ns", key, emb, item); err != nil {
			t.Fatalf("Failed to index %s: %v", key, err)
		}
	}

	r := retrieve.NewRetriever(vs, retrieve.NewScorer(0.35), 1.1)
	results, err := r.Retrieve(ctx, "ns", emb, nil, 2)
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Item.ID != "newer" {
		t.Errorf("Expected the more recent item to win the tie, got %s", results[0].Item.ID)
	}
}

func TestRetriever_EmptyIndex(t *testing.T) {
	vs := tier.NewVectorStore(tier.Config{}, nil, nil)
	r := retrieve.NewRetriever(vs, nil, 0)

	results, err := r.Retrieve(context.Background(), "ns", unit(1, 0, 0), nil, 5)
	if err != nil {
		t.Fatalf("Empty index must not fail: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestRetriever_ZeroTopK(t *testing.T) {
	vs := tier.NewVectorStore(tier.Config{}, nil, nil)
	r := retrieve.NewRetriever(vs, nil, 0)

	results, err := r.Retrieve(context.Background(), "ns", unit(1, 0, 0), nil, 0)
	if err != nil || results != nil {
		t.Errorf("Expected nil results and nil error for topK 0, got %v, %v", results, err)
	}
}
