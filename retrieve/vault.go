package retrieve

import "sync"

// NegativeVault holds embedded negative examples: content known to be
// wrong, unsafe, or otherwise to be steered away from. The vault is
// bounded FIFO — old examples age out as new ones arrive.
//
// Vault text is untrusted input; the prompt assembler renders it only
// inside the NEGATIVE_EXAMPLES data section.
type NegativeVault struct {
	capacity int

	mu       sync.Mutex
	examples []NegativeExample
}

// NegativeExample pairs the example text with its embedding.
type NegativeExample struct {
	Text      string
	Embedding []float32
}

// NewNegativeVault builds a vault holding at most capacity examples.
// Non-positive capacity defaults to 64.
func NewNegativeVault(capacity int) *NegativeVault {
	if capacity <= 0 {
		capacity = 64
	}
	return &NegativeVault{capacity: capacity}
}

// Add records a negative example, evicting the oldest when full.
func (v *NegativeVault) Add(text string, embedding []float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.examples = append(v.examples, NegativeExample{Text: text, Embedding: embedding})
	if len(v.examples) > v.capacity {
		v.examples = v.examples[len(v.examples)-v.capacity:]
	}
}

// Embeddings returns the stored embedding vectors, oldest first.
func (v *NegativeVault) Embeddings() [][]float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([][]float32, 0, len(v.examples))
	for _, ex := range v.examples {
		if len(ex.Embedding) > 0 {
			out = append(out, ex.Embedding)
		}
	}
	return out
}

// Texts returns the stored example texts, oldest first.
func (v *NegativeVault) Texts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.examples))
	for i, ex := range v.examples {
		out[i] = ex.Text
	}
	return out
}

// Len returns the number of stored examples.
func (v *NegativeVault) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.examples)
}
