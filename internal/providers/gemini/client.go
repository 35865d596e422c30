// Package gemini wraps the google.golang.org/genai SDK for Imagen image
// generation and Veo video generation. Veo jobs are long-running operations
// polled until done.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/lulatiAI/ai-image-backend/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("gemini: api key is required")

// Options configures the Gemini client.
type Options struct {
	APIKey     string
	ImageModel string
	VideoModel string
	Logger     *infra.Logger
	PollEvery  time.Duration
}

// Client is a thin facade over the genai SDK.
type Client struct {
	genaiClient *genai.Client
	imageModel  string
	videoModel  string
	logger      *infra.Logger
	pollEvery   time.Duration
}

// ImageRequest captures the inputs for Imagen generation.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	Quantity    int
	RequestID   string
}

// VideoRequest captures the inputs for Veo generation. SourceImage is
// optional conditioning input for image-to-video.
type VideoRequest struct {
	Prompt          string
	AspectRatio     string
	DurationSeconds int
	SourceImage     []byte
	SourceImageMIME string
	RequestID       string
}

// Asset is a normalized generated media item.
type Asset struct {
	URL  string
	Data []byte
	MIME string
}

// NewClient constructs the underlying genai client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "imagen-3.0-generate-002"
	}
	videoModel := strings.TrimSpace(opts.VideoModel)
	if videoModel == "" {
		videoModel = "veo-2.0-generate-001"
	}
	pollEvery := opts.PollEvery
	if pollEvery <= 0 {
		pollEvery = 5 * time.Second
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
		genaiClient: genaiClient,
		imageModel:  imageModel,
		videoModel:  videoModel,
		logger:      logger,
		pollEvery:   pollEvery,
	}, nil
}

// GenerateImages produces one or more images via Imagen. Results come back
// as inline bytes; Imagen does not host output.
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) ([]Asset, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: int32(quantity),
	}
	if req.AspectRatio != "" {
		cfg.AspectRatio = req.AspectRatio
	}
	resp, err := c.genaiClient.Models.GenerateImages(ctx, c.imageModel, req.Prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate images: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, errors.New("gemini: empty image response")
	}
	assets := make([]Asset, 0, len(resp.GeneratedImages))
	for _, generated := range resp.GeneratedImages {
		if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mime := generated.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		assets = append(assets, Asset{Data: generated.Image.ImageBytes, MIME: mime})
	}
	if len(assets) == 0 {
		return nil, errors.New("gemini: response carried no image bytes")
	}
	c.logger.Debug().
		Str("model", c.imageModel).
		Str("request_id", req.RequestID).
		Int("assets", len(assets)).
		Msg("gemini: generated images")
	return assets, nil
}

// GenerateVideo runs a Veo operation to completion and returns the first
// generated video.
func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) (*Asset, error) {
	cfg := &genai.GenerateVideosConfig{}
	if req.AspectRatio != "" {
		cfg.AspectRatio = req.AspectRatio
	}
	if req.DurationSeconds > 0 {
		cfg.DurationSeconds = genai.Ptr(int32(req.DurationSeconds))
	}
	var image *genai.Image
	if len(req.SourceImage) > 0 {
		mime := req.SourceImageMIME
		if mime == "" {
			mime = "image/png"
		}
		image = &genai.Image{ImageBytes: req.SourceImage, MIMEType: mime}
	}

	op, err := c.genaiClient.Models.GenerateVideos(ctx, c.videoModel, req.Prompt, image, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate video: %w", err)
	}
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollEvery):
		}
		op, err = c.genaiClient.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("gemini: poll video operation: %w", err)
		}
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return nil, errors.New("gemini: video operation finished without output")
	}
	video := op.Response.GeneratedVideos[0].Video
	if video == nil {
		return nil, errors.New("gemini: video operation returned an empty asset")
	}
	mime := video.MIMEType
	if mime == "" {
		mime = "video/mp4"
	}
	c.logger.Debug().
		Str("model", c.videoModel).
		Str("request_id", req.RequestID).
		Msg("gemini: generated video")
	return &Asset{URL: video.URI, Data: video.VideoBytes, MIME: mime}, nil
}
