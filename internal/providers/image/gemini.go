package image

import (
	"context"

	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/gemini"
)

type geminiImageClient interface {
	GenerateImages(ctx context.Context, req gemini.ImageRequest) ([]gemini.Asset, error)
}

// GeminiBackend serves text_to_image through Imagen. Results are inline
// bytes, never hosted URLs.
type GeminiBackend struct {
	client geminiImageClient
}

func NewGeminiBackend(client geminiImageClient) *GeminiBackend {
	return &GeminiBackend{client: client}
}

func (b *GeminiBackend) Submit(ctx context.Context, req pipeline.Request) (*pipeline.Task, error) {
	assets, err := b.client.GenerateImages(ctx, gemini.ImageRequest{
		Prompt:      req.Prompt,
		AspectRatio: sizeToAspectRatio(req.Size),
		Quantity:    req.Quantity,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	outputs := make([]pipeline.Output, len(assets))
	for i, asset := range assets {
		outputs[i] = pipeline.Output{URL: asset.URL, Data: asset.Data, MIME: asset.MIME}
	}
	return &pipeline.Task{
		ID:      req.RequestID,
		Status:  pipeline.StatusSucceeded,
		Outputs: outputs,
	}, nil
}

// sizeToAspectRatio maps WxH size strings onto Imagen aspect ratios. Square
// sizes collapse to 1:1; ratio strings pass through untouched.
func sizeToAspectRatio(size string) string {
	switch size {
	case "256x256", "512x512", "1024x1024":
		return "1:1"
	}
	return size
}

var _ pipeline.Backend = (*GeminiBackend)(nil)
