// Package video adapts video-generation vendor clients to the pipeline
// backend contract.
package video

import (
	"context"
	"encoding/base64"

	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/runway"
)

type runwayVideoClient interface {
	GenerateVideo(ctx context.Context, req runway.VideoRequest) (*runway.Task, error)
	AnimateImage(ctx context.Context, req runway.VideoRequest) (*runway.Task, error)
}

// RunwayBackend serves text_to_video and image_to_video through Runway. The
// vendor is asynchronous; the client polls the task to a terminal state
// before returning, so Submit always yields a terminal pipeline task.
type RunwayBackend struct {
	client runwayVideoClient
}

func NewRunwayBackend(client runwayVideoClient) *RunwayBackend {
	return &RunwayBackend{client: client}
}

func (b *RunwayBackend) Submit(ctx context.Context, req pipeline.Request) (*pipeline.Task, error) {
	vendorReq := runway.VideoRequest{
		Prompt:    req.Prompt,
		Ratio:     req.Size,
		Duration:  req.DurationSeconds,
		Model:     req.Model,
		RequestID: req.RequestID,
	}

	var (
		task *runway.Task
		err  error
	)
	if req.Operation == pipeline.OpImageToVideo {
		vendorReq.PromptImage = promptImage(req)
		task, err = b.client.AnimateImage(ctx, vendorReq)
	} else {
		task, err = b.client.GenerateVideo(ctx, vendorReq)
	}
	if err != nil {
		return nil, err
	}

	out := &pipeline.Task{ID: task.ID}
	switch task.Status {
	case runway.StatusSucceeded:
		out.Status = pipeline.StatusSucceeded
		for _, u := range task.OutputURLs {
			out.Outputs = append(out.Outputs, pipeline.Output{URL: u, MIME: "video/mp4"})
		}
	default:
		out.Status = pipeline.StatusFailed
		out.FailureDetail = task.Failure
	}
	return out, nil
}

// promptImage prefers the caller-supplied URL; uploaded bytes are inlined as
// a data URI, which the vendor accepts in place of a hosted image.
func promptImage(req pipeline.Request) string {
	if req.SourceImageURL != "" {
		return req.SourceImageURL
	}
	mime := req.SourceImageMIME
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(req.SourceImageData)
}

var _ pipeline.Backend = (*RunwayBackend)(nil)
