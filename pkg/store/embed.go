package store

import (
	"context"

	"github.com/philippgille/chromem-go"
)

// EmbedFunc turns text into an embedding vector.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// NewOpenAIEmbedder returns an EmbedFunc backed by the OpenAI embeddings
// API. The empty model defaults to text-embedding-3-small.
func NewOpenAIEmbedder(apiKey, model string) EmbedFunc {
	embeddingModel := chromem.EmbeddingModelOpenAI3Small
	if model != "" {
		embeddingModel = chromem.EmbeddingModelOpenAI(model)
	}
	return EmbedFunc(chromem.NewEmbeddingFuncOpenAI(apiKey, embeddingModel))
}
