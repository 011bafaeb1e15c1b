package openaiEmbedding

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/skathuria/PlagiarismAPI/internal/embedding"
	"github.com/skathuria/PlagiarismAPI/pkg/logger_i"
)

// OpenAI embedding dimensions per model; text-embedding-3-small is 1536.
const modelDimension = 1536

type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

func NewOpenAIEmbeddingClient(apiKey string, model string) embedding.Embedder {
	if apiKey == "" {
		return nil
	}
	return &client{
		api:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) Dimension() int {
	return modelDimension
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("nothing to embed")
	}

	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		c.logger.Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, err
	}

	vectors := make([][]float32, 0, len(res.Data))
	for _, d := range res.Data {
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vectors = append(vectors, v)
	}
	if err := embedding.ValidateVectors(vectors, len(texts), modelDimension); err != nil {
		c.logger.Error("Provider returned malformed vectors", "error", err)
		return nil, err
	}
	return vectors, nil
}
