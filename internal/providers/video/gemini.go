package video

import (
	"context"

	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/gemini"
)

type geminiVideoClient interface {
	GenerateVideo(ctx context.Context, req gemini.VideoRequest) (*gemini.Asset, error)
}

// GeminiBackend serves text_to_video and image_to_video through Veo. The SDK
// exposes a long-running operation; the client blocks on it, bounded by ctx.
// Veo takes conditioning images as bytes, so URL-referenced source images are
// fetched first.
type GeminiBackend struct {
	client  geminiVideoClient
	fetcher pipeline.Fetcher
}

func NewGeminiBackend(client geminiVideoClient, fetcher pipeline.Fetcher) *GeminiBackend {
	return &GeminiBackend{client: client, fetcher: fetcher}
}

func (b *GeminiBackend) Submit(ctx context.Context, req pipeline.Request) (*pipeline.Task, error) {
	sourceData := req.SourceImageData
	sourceMIME := req.SourceImageMIME
	if req.Operation == pipeline.OpImageToVideo && len(sourceData) == 0 && req.SourceImageURL != "" {
		data, mime, err := b.fetcher.Fetch(ctx, req.SourceImageURL)
		if err != nil {
			return nil, err
		}
		sourceData, sourceMIME = data, mime
	}

	asset, err := b.client.GenerateVideo(ctx, gemini.VideoRequest{
		Prompt:          req.Prompt,
		AspectRatio:     req.Size,
		DurationSeconds: req.DurationSeconds,
		SourceImage:     sourceData,
		SourceImageMIME: sourceMIME,
		RequestID:       req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	return &pipeline.Task{
		ID:      req.RequestID,
		Status:  pipeline.StatusSucceeded,
		Outputs: []pipeline.Output{{URL: asset.URL, Data: asset.Data, MIME: asset.MIME}},
	}, nil
}

var _ pipeline.Backend = (*GeminiBackend)(nil)
