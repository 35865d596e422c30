// Package image adapts image-generation vendor clients to the pipeline
// backend contract.
package image

import (
	"context"

	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/openai"
)

type openaiImageClient interface {
	GenerateImages(ctx context.Context, req openai.ImageRequest) ([]openai.ImageAsset, error)
	Model() string
}

// OpenAIBackend serves text_to_image through the OpenAI Images API. The call
// is synchronous: the vendor returns ready results in one round trip.
type OpenAIBackend struct {
	client openaiImageClient
}

func NewOpenAIBackend(client openaiImageClient) *OpenAIBackend {
	return &OpenAIBackend{client: client}
}

func (b *OpenAIBackend) Submit(ctx context.Context, req pipeline.Request) (*pipeline.Task, error) {
	assets, err := b.client.GenerateImages(ctx, openai.ImageRequest{
		Prompt:    req.Prompt,
		Size:      req.Size,
		Quantity:  req.Quantity,
		Model:     req.Model,
		RequestID: req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	outputs := make([]pipeline.Output, len(assets))
	for i, asset := range assets {
		mime := asset.MIME
		if mime == "" {
			mime = "image/png"
		}
		outputs[i] = pipeline.Output{URL: asset.URL, Data: asset.Data, MIME: mime}
	}
	return &pipeline.Task{
		ID:      req.RequestID,
		Status:  pipeline.StatusSucceeded,
		Outputs: outputs,
	}, nil
}

var _ pipeline.Backend = (*OpenAIBackend)(nil)
