package pipeline

import (
	"context"

	"github.com/becomeliminal/strata-go-sdk/prompt"
)

// Embedder converts text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// CompleteOptions tune a single provider call.
type CompleteOptions struct {
	Model     string
	MaxTokens int
}

// Provider sends an assembled prompt to a model and returns its reply.
type Provider interface {
	Complete(ctx context.Context, messages []prompt.Message, opts CompleteOptions) (string, error)
}
