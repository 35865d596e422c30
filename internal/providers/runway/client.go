// Package runway implements a client for the Runway generation API. Runway
// jobs are asynchronous: a submit call returns a task id which is polled
// until it reaches a terminal status.
package runway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lulatiAI/ai-image-backend/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("runway: api key is required")

// Task statuses reported by the Runway tasks endpoint.
const (
	StatusPending   = "PENDING"
	StatusThrottled = "THROTTLED"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Options configures the Runway client.
type Options struct {
	APIKey         string
	BaseURL        string
	Version        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	PollInitial    time.Duration
	PollMax        time.Duration
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the Runway REST API.
type Client struct {
	apiKey      string
	baseURL     string
	version     string
	httpClient  *http.Client
	logger      *infra.Logger
	pollInitial time.Duration
	pollMax     time.Duration
}

// TextToImageRequest captures the inputs for an image generation job.
type TextToImageRequest struct {
	Prompt    string
	Ratio     string
	Model     string
	RequestID string
}

// VideoRequest captures the inputs for a video generation job. PromptImage is
// required for image-to-video and must be a URL or data URI.
type VideoRequest struct {
	Prompt      string
	PromptImage string
	Ratio       string
	Duration    int
	Model       string
	RequestID   string
}

// Task is the normalized terminal result of a Runway job.
type Task struct {
	ID         string
	Status     string
	OutputURLs []string
	Failure    string
}

type submitResponse struct {
	ID string `json:"id"`
}

type taskResponse struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	Output      []string `json:"output"`
	Failure     string   `json:"failure"`
	FailureCode string   `json:"failureCode"`
}

type apiError struct {
	Error string `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.dev.runwayml.com/v1"
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "2024-11-06"
	}
	pollInitial := opts.PollInitial
	if pollInitial <= 0 {
		pollInitial = 2 * time.Second
	}
	pollMax := opts.PollMax
	if pollMax <= 0 {
		pollMax = 10 * time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		version:     version,
		httpClient:  httpClient,
		logger:      logger,
		pollInitial: pollInitial,
		pollMax:     pollMax,
	}
}

// GenerateImage submits a text-to-image job and waits for a terminal task.
func (c *Client) GenerateImage(ctx context.Context, req TextToImageRequest) (*Task, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = "gen4_image"
	}
	payload := map[string]any{
		"model":      model,
		"promptText": req.Prompt,
	}
	if req.Ratio != "" {
		payload["ratio"] = req.Ratio
	}
	return c.submitAndAwait(ctx, "/text_to_image", payload, req.RequestID)
}

// GenerateVideo submits a text-to-video job and waits for a terminal task.
func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) (*Task, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = "veo3"
	}
	payload := map[string]any{
		"model":      model,
		"promptText": req.Prompt,
	}
	if req.Ratio != "" {
		payload["ratio"] = req.Ratio
	}
	if req.Duration > 0 {
		payload["duration"] = req.Duration
	}
	return c.submitAndAwait(ctx, "/text_to_video", payload, req.RequestID)
}

// AnimateImage submits an image-to-video job and waits for a terminal task.
func (c *Client) AnimateImage(ctx context.Context, req VideoRequest) (*Task, error) {
	if strings.TrimSpace(req.PromptImage) == "" {
		return nil, errors.New("runway: prompt image is required")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = "gen4_turbo"
	}
	payload := map[string]any{
		"model":       model,
		"promptImage": req.PromptImage,
	}
	if req.Prompt != "" {
		payload["promptText"] = req.Prompt
	}
	if req.Ratio != "" {
		payload["ratio"] = req.Ratio
	}
	if req.Duration > 0 {
		payload["duration"] = req.Duration
	}
	return c.submitAndAwait(ctx, "/image_to_video", payload, req.RequestID)
}

func (c *Client) submitAndAwait(ctx context.Context, path string, payload map[string]any, requestID string) (*Task, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("runway: encode request: %w", err)
	}
	raw, status, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, c.statusError(status, raw)
	}
	var submitted submitResponse
	if err := json.Unmarshal(raw, &submitted); err != nil {
		return nil, fmt.Errorf("runway: decode submit response: %w", err)
	}
	if submitted.ID == "" {
		return nil, errors.New("runway: submit response missing task id")
	}
	c.logger.Debug().
		Str("task_id", submitted.ID).
		Str("request_id", requestID).
		Str("path", path).
		Msg("runway: task submitted")
	return c.awaitTask(ctx, submitted.ID)
}

// awaitTask polls the tasks endpoint with growing intervals until the task is
// terminal or ctx expires. No busy spin: the wait between polls starts at
// pollInitial and backs off up to pollMax.
func (c *Client) awaitTask(ctx context.Context, taskID string) (*Task, error) {
	wait := c.pollInitial
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		if wait < c.pollMax {
			wait = wait * 3 / 2
			if wait > c.pollMax {
				wait = c.pollMax
			}
		}

		raw, status, err := c.do(ctx, http.MethodGet, "/tasks/"+taskID, nil)
		if err != nil {
			return nil, err
		}
		if status >= 300 {
			return nil, c.statusError(status, raw)
		}
		var task taskResponse
		if err := json.Unmarshal(raw, &task); err != nil {
			return nil, fmt.Errorf("runway: decode task response: %w", err)
		}
		switch task.Status {
		case StatusSucceeded:
			return &Task{ID: task.ID, Status: task.Status, OutputURLs: task.Output}, nil
		case StatusFailed:
			failure := task.Failure
			if failure == "" {
				failure = task.FailureCode
			}
			return &Task{ID: task.ID, Status: task.Status, Failure: failure}, nil
		case StatusPending, StatusThrottled, StatusRunning:
			// keep polling
		default:
			return nil, fmt.Errorf("runway: unknown task status %q", task.Status)
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("runway: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Runway-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("runway: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("runway: read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) statusError(status int, raw []byte) error {
	var detail apiError
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Error != "" {
		return fmt.Errorf("runway: %s (status %d)", detail.Error, status)
	}
	return fmt.Errorf("runway: status %d", status)
}
