package image

import (
	"context"
	"strings"

	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/runway"
)

type runwayImageClient interface {
	GenerateImage(ctx context.Context, req runway.TextToImageRequest) (*runway.Task, error)
}

// RunwayBackend serves text_to_image through Runway. The client polls the
// vendor task to a terminal state before returning, so Submit always yields a
// terminal pipeline task.
type RunwayBackend struct {
	client runwayImageClient
}

func NewRunwayBackend(client runwayImageClient) *RunwayBackend {
	return &RunwayBackend{client: client}
}

func (b *RunwayBackend) Submit(ctx context.Context, req pipeline.Request) (*pipeline.Task, error) {
	task, err := b.client.GenerateImage(ctx, runway.TextToImageRequest{
		Prompt:    req.Prompt,
		Ratio:     sizeToRunwayRatio(req.Size),
		Model:     req.Model,
		RequestID: req.RequestID,
	})
	if err != nil {
		return nil, err
	}

	out := &pipeline.Task{ID: task.ID}
	switch task.Status {
	case runway.StatusSucceeded:
		out.Status = pipeline.StatusSucceeded
		for _, u := range task.OutputURLs {
			out.Outputs = append(out.Outputs, pipeline.Output{URL: u, MIME: "image/png"})
		}
	default:
		out.Status = pipeline.StatusFailed
		out.FailureDetail = task.Failure
	}
	return out, nil
}

// sizeToRunwayRatio converts WxH size strings to the W:H form the vendor
// expects; ratio strings pass through untouched.
func sizeToRunwayRatio(size string) string {
	return strings.ReplaceAll(size, "x", ":")
}

var _ pipeline.Backend = (*RunwayBackend)(nil)
