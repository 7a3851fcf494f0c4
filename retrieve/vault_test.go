package retrieve_test

import (
	"testing"

	"github.com/becomeliminal/strata-go-sdk/retrieve"
)

func TestNegativeVault_BoundedFIFO(t *testing.T) {
	v := retrieve.NewNegativeVault(2)

	v.Add("first", []float32{1, 0})
	v.Add("second", []float32{0, 1})
	v.Add("third", []float32{1, 1})

	texts := v.Texts()
	if len(texts) != 2 {
		t.Fatalf("Expected capacity 2, got %d", len(texts))
	}
	if texts[0] != "second" || texts[1] != "third" {
		t.Errorf("Expected oldest aged out, got %v", texts)
	}
	if v.Len() != 2 {
		t.Errorf("Expected Len 2, got %d", v.Len())
	}
}

func TestNegativeVault_SkipsEmptyEmbeddings(t *testing.T) {
	v := retrieve.NewNegativeVault(8)

	v.Add("text only", nil)
	v.Add("embedded", []float32{1, 0})

	if len(v.Texts()) != 2 {
		t.Error("Expected both texts kept")
	}
	if len(v.Embeddings()) != 1 {
		t.Errorf("Expected only the embedded example's vector, got %d", len(v.Embeddings()))
	}
}
