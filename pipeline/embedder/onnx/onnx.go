//go:build onnx

// Package onnx embeds text locally through ONNX Runtime with a
// sentence-transformer model such as all-MiniLM-L6-v2. Build with the
// onnx tag and point Config at the model, tokenizer, and the
// onnxruntime shared library.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

const maxSequenceLength = 128

// Config locates the model artifacts.
type Config struct {
	// ModelPath points at the .onnx model file. Required.
	ModelPath string

	// TokenizerPath points at the HuggingFace tokenizer.json holding the
	// WordPiece vocab. Required.
	TokenizerPath string

	// LibraryPath points at libonnxruntime.so. Empty falls back to the
	// ONNXRUNTIME_LIB environment variable.
	LibraryPath string

	// Dimensions is the output vector size. Zero defaults to 384.
	Dimensions int
}

// Embedder runs sentence-transformer inference through ONNX Runtime.
// Not safe for concurrent use; wrap with a pool or mutex if shared.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
}

// New initializes the runtime and loads the model and tokenizer.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 384
	}
	lib := cfg.LibraryPath
	if lib == "" {
		lib = os.Getenv("ONNXRUNTIME_LIB")
	}
	if lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Embedder{session: session, tokenizer: tokenizer, dimensions: cfg.Dimensions}, nil
}

// Embed tokenizes the text, runs inference, mean-pools over attended
// positions, and returns the normalized vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ids := e.tokenizer.encode(text)

	inputIDs := make([]int64, maxSequenceLength)
	attention := make([]int64, maxSequenceLength)
	tokenTypes := make([]int64, maxSequenceLength)

	inputIDs[0] = int64(e.tokenizer.cls)
	attention[0] = 1
	if len(ids) > maxSequenceLength-2 {
		ids = ids[:maxSequenceLength-2]
	}
	for i, id := range ids {
		inputIDs[i+1] = id
		attention[i+1] = 1
	}
	inputIDs[len(ids)+1] = int64(e.tokenizer.sep)
	attention[len(ids)+1] = 1

	shape := ort.NewShape(1, maxSequenceLength)
	tensors := make([]ort.Value, 0, 3)
	for _, data := range [][]int64{inputIDs, attention, tokenTypes} {
		t, err := ort.NewTensor(shape, data)
		if err != nil {
			for _, prev := range tensors {
				prev.Destroy()
			}
			return nil, fmt.Errorf("create input tensor: %w", err)
		}
		tensors = append(tensors, t)
	}
	defer func() {
		for _, t := range tensors {
			t.Destroy()
		}
	}()

	outputs := []ort.Value{nil}
	if err := e.session.Run(tensors, outputs); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()
	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	return e.pool(hidden, attention)
}

// pool mean-pools the last hidden state over attended positions. A
// two-dimensional output is treated as already pooled.
func (e *Embedder) pool(hidden *ort.Tensor[float32], attention []int64) ([]float32, error) {
	data := hidden.GetData()
	shape := hidden.GetShape()

	embedding := make([]float32, e.dimensions)
	switch len(shape) {
	case 2:
		if len(data) < e.dimensions {
			return nil, fmt.Errorf("output size %d below dimensions %d", len(data), e.dimensions)
		}
		copy(embedding, data[:e.dimensions])
	case 3:
		seqLen, hiddenSize := int(shape[1]), int(shape[2])
		if shape[0] != 1 || hiddenSize != e.dimensions {
			return nil, fmt.Errorf("unexpected output shape %v", shape)
		}
		var attended float32
		for i := 0; i < seqLen; i++ {
			if attention[i] == 0 {
				continue
			}
			attended++
			row := data[i*hiddenSize : (i+1)*hiddenSize]
			for j, v := range row {
				embedding[j] += v
			}
		}
		if attended == 0 {
			return nil, fmt.Errorf("no attended tokens")
		}
		for j := range embedding {
			embedding[j] /= attended
		}
	default:
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	return normalize(embedding), nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}

// wordPieceTokenizer is a minimal BERT WordPiece encoder backed by the
// vocab from a HuggingFace tokenizer.json.
type wordPieceTokenizer struct {
	vocab map[string]int
	cls   int
	sep   int
	unk   int
}

func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("empty vocab in %s", path)
	}
	return &wordPieceTokenizer{vocab: file.Model.Vocab, cls: 101, sep: 102, unk: 100}, nil
}

func (t *wordPieceTokenizer) encode(text string) []int64 {
	var ids []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		if id, ok := t.vocab[word]; ok {
			ids = append(ids, int64(id))
			continue
		}
		for _, piece := range t.split(word) {
			if id, ok := t.vocab[piece]; ok {
				ids = append(ids, int64(id))
			} else {
				ids = append(ids, int64(t.unk))
			}
		}
	}
	return ids
}

// split greedily matches the longest vocab prefix, marking continuations
// with the ## prefix.
func (t *wordPieceTokenizer) split(word string) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		matched := false
		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			pieces = append(pieces, "[UNK]")
			start++
		}
	}
	return pieces
}
