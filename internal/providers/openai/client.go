// Package openai implements a minimal client for the OpenAI Images API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
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
var ErrMissingAPIKey = errors.New("openai: api key is required")

// Options configures the OpenAI images client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the OpenAI image generation endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// ImageRequest captures the required inputs for image generation.
type ImageRequest struct {
	Prompt    string
	Size      string
	Quantity  int
	Model     string
	RequestID string
}

// ImageAsset is the normalized result from the API: a hosted URL or inline
// bytes, depending on which response format the endpoint returned.
type ImageAsset struct {
	URL  string
	Data []byte
	MIME string
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "dall-e-3"
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
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateImages invokes the generations endpoint once and returns every
// asset from the response.
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) ([]ImageAsset, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("openai: prompt is required")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	payload := generationRequest{
		Model:  model,
		Prompt: prompt,
		N:      quantity,
		Size:   req.Size,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}
	endpoint := c.baseURL + "/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("openai: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("openai: %s (%s)", decoded.Error.Message, decoded.Error.Type)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai: status %d", resp.StatusCode)
	}
	if len(decoded.Data) == 0 {
		return nil, errors.New("openai: empty image response")
	}

	assets := make([]ImageAsset, 0, len(decoded.Data))
	for _, item := range decoded.Data {
		asset := ImageAsset{URL: strings.TrimSpace(item.URL)}
		if item.B64JSON != "" {
			data, err := base64.StdEncoding.DecodeString(item.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("openai: decode image data: %w", err)
			}
			asset.Data = data
			asset.MIME = "image/png"
		}
		if asset.URL == "" && len(asset.Data) == 0 {
			continue
		}
		assets = append(assets, asset)
	}
	if len(assets) == 0 {
		return nil, errors.New("openai: response carried no usable assets")
	}
	c.logger.Debug().
		Str("model", model).
		Str("request_id", req.RequestID).
		Int("assets", len(assets)).
		Msg("openai: generated image assets")
	return assets, nil
}
