package mock_test

import (
	"context"
	"math"
	"testing"

	"github.com/becomeliminal/strata-go-sdk/pipeline/embedder/mock"
)

func TestEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	e := mock.New()

	a, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatalf("Failed to embed: %v", err)
	}
	b, _ := e.Embed(ctx, "same text")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("Expected identical embeddings for identical text")
		}
	}

	c, _ := e.Embed(ctx, "different text")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Expected different text to embed differently")
	}
}

func TestEmbedder_UnitNorm(t *testing.T) {
	e := mock.NewWithDimensions(64)
	v, err := e.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatalf("Failed to embed: %v", err)
	}
	if len(v) != 64 || e.Dimensions() != 64 {
		t.Fatalf("Expected 64 dimensions, got %d", len(v))
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("Expected unit norm, got %f", math.Sqrt(norm))
	}
}
