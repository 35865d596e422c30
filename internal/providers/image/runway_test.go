package image

import (
	"context"
	"testing"

	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/runway"
)

type stubRunwayImageClient struct {
	task    *runway.Task
	err     error
	calls   int
	lastReq runway.TextToImageRequest
}

func (s *stubRunwayImageClient) GenerateImage(ctx context.Context, req runway.TextToImageRequest) (*runway.Task, error) {
	s.calls++
	s.lastReq = req
	return s.task, s.err
}

func TestRunwayBackendSubmit(t *testing.T) {
	client := &stubRunwayImageClient{task: &runway.Task{
		ID:         "task-1",
		Status:     runway.StatusSucceeded,
		OutputURLs: []string{"https://rw.example.com/i.png"},
	}}
	b := NewRunwayBackend(client)

	task, err := b.Submit(context.Background(), pipeline.Request{
		Operation: pipeline.OpTextToImage,
		Prompt:    "a cat",
		Size:      "1024x1024",
		RequestID: "req-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.calls != 1 || client.lastReq.Prompt != "a cat" {
		t.Fatalf("request not forwarded: %+v", client.lastReq)
	}
	if client.lastReq.Ratio != "1024:1024" {
		t.Fatalf("ratio = %q, want 1024:1024", client.lastReq.Ratio)
	}
	if task.Status != pipeline.StatusSucceeded || task.Outputs[0].MIME != "image/png" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestRunwayBackendMapsFailure(t *testing.T) {
	client := &stubRunwayImageClient{task: &runway.Task{ID: "task-2", Status: runway.StatusFailed, Failure: "safety"}}
	b := NewRunwayBackend(client)

	task, err := b.Submit(context.Background(), pipeline.Request{Operation: pipeline.OpTextToImage, Prompt: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != pipeline.StatusFailed || task.FailureDetail != "safety" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestSizeToRunwayRatio(t *testing.T) {
	if got := sizeToRunwayRatio("512x512"); got != "512:512" {
		t.Fatalf("got %s, want 512:512", got)
	}
	if got := sizeToRunwayRatio("16:9"); got != "16:9" {
		t.Fatalf("got %s, want pass-through", got)
	}
}
