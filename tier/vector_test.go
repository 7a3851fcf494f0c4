package tier_test

import (
	"context"
	"testing"

	"github.com/becomeliminal/strata-go-sdk/core"
	"github.com/becomeliminal/strata-go-sdk/tier"
)

func vecItem(content string) core.MemoryItem {
	return core.MemoryItem{Role: core.RoleUser, Content: content}
}

func TestVectorStore_SimilaritySearch(t *testing.T) {
	ctx := context.Background()
	vs := tier.NewVectorStore(tier.Config{Name: tier.LongVector, Capacity: 16}, newFakeClock(), nil)

	docs := map[string][]float32{
		"x": {1, 0, 0},
		"y": {0, 1, 0},
		"z": {0, 0, 1},
	}
	for key, emb := range docs {
		if err := vs.PutVector(ctx, "ns", key, emb, vecItem("doc "+key)); err != nil {
			t.Fatalf("Failed to index %s: %v", key, err)
		}
	}

	matches, err := vs.SimilaritySearch(ctx, "ns", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("Expected at least one match")
	}
	if matches[0].Item.Content != "doc x" {
		t.Errorf("Expected doc x first, got %q", matches[0].Item.Content)
	}
	if matches[0].Similarity < 0.99 {
		t.Errorf("Expected near-exact similarity, got %f", matches[0].Similarity)
	}
}

func TestVectorStore_TopKLargerThanIndex(t *testing.T) {
	ctx := context.Background()
	vs := tier.NewVectorStore(tier.Config{Capacity: 16}, newFakeClock(), nil)

	if err := vs.PutVector(ctx, "ns", "only", []float32{1, 0, 0}, vecItem("lonely doc")); err != nil {
		t.Fatalf("Failed to index: %v", err)
	}

	// Asking for more results than documents must degrade, not fail.
	matches, err := vs.SimilaritySearch(ctx, "ns", []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Failed to search past index size: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Expected 1 match, got %d", len(matches))
	}
}

func TestVectorStore_EvictionDropsDocument(t *testing.T) {
	ctx := context.Background()
	vs := tier.NewVectorStore(tier.Config{Capacity: 2}, newFakeClock(), nil)

	vs.PutVector(ctx, "ns", "a", []float32{1, 0, 0}, vecItem("oldest"))
	vs.PutVector(ctx, "ns", "b", []float32{0, 1, 0}, vecItem("middle"))
	vs.PutVector(ctx, "ns", "c", []float32{0, 0, 1}, vecItem("newest"))

	// a was evicted; its vector must not come back from search.
	matches, err := vs.SimilaritySearch(ctx, "ns", []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	for _, m := range matches {
		if m.Item.Content == "oldest" {
			t.Error("Evicted document still returned by similarity search")
		}
	}
}

func TestVectorStore_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	vs := tier.NewVectorStore(tier.Config{Capacity: 16}, newFakeClock(), nil)

	vs.PutVector(ctx, "alice", "k1", []float32{1, 0, 0}, vecItem("alice doc"))
	vs.PutVector(ctx, "bob", "k2", []float32{1, 0, 0}, vecItem("bob doc"))

	matches, err := vs.SimilaritySearch(ctx, "alice", []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	for _, m := range matches {
		if m.Item.Content != "alice doc" {
			t.Errorf("Cross-namespace leak: got %q", m.Item.Content)
		}
	}
}

func TestVectorStore_EmptyNamespaceSearch(t *testing.T) {
	vs := tier.NewVectorStore(tier.Config{}, newFakeClock(), nil)

	matches, err := vs.SimilaritySearch(context.Background(), "empty", []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search over empty namespace must not fail: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
}
