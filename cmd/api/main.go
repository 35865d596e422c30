package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lulatiAI/ai-image-backend/internal/http/handlers"
	httpapi "github.com/lulatiAI/ai-image-backend/internal/http/httpapi"
	"github.com/lulatiAI/ai-image-backend/internal/infra"
	"github.com/lulatiAI/ai-image-backend/internal/moderation"
	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/gemini"
	"github.com/lulatiAI/ai-image-backend/internal/providers/image"
	"github.com/lulatiAI/ai-image-backend/internal/providers/openai"
	"github.com/lulatiAI/ai-image-backend/internal/providers/runway"
	"github.com/lulatiAI/ai-image-backend/internal/providers/video"
	"github.com/lulatiAI/ai-image-backend/internal/store"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	downloads := store.NewMemory(cfg.DownloadTTL)
	defer downloads.Close()

	fetcher := pipeline.NewHTTPFetcher(&http.Client{Timeout: 60 * time.Second})

	backends, err := buildBackends(ctx, cfg, &logger, fetcher)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build provider backends")
	}

	var classifier pipeline.Classifier
	if cfg.ModerationEnabled || cfg.ModerateVideos {
		classifier, err = moderation.New(ctx, cfg.AWSRegion)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build moderation classifier")
		}
	}

	p := &pipeline.Pipeline{
		Validator: pipeline.NewValidator(pipeline.ValidatorConfig{
			AllowedImageSizes:  cfg.AllowedImageSizes,
			AllowedVideoRatios: cfg.AllowedVideoRatios,
			DefaultImageSize:   cfg.DefaultImageSize,
			DefaultVideoRatio:  cfg.DefaultVideoRatio,
			MaxDuration:        cfg.MaxDurationSeconds,
			MaxQuantity:        cfg.MaxQuantity,
			DenylistTerms:      cfg.DenylistTerms,
		}),
		Dispatcher: pipeline.NewDispatcher(backends, cfg.GenerateTimeout, &logger),
		Gate: pipeline.NewGate(classifier, pipeline.GatePolicy{
			ModerateImages: cfg.ModerationEnabled,
			ModerateVideos: cfg.ModerateVideos,
			MinConfidence:  cfg.ModerationThreshold,
		}),
		Materializer: pipeline.NewMaterializer(fetcher, downloads),
		Fetcher:      fetcher,
		Logger:       &logger,
	}

	app := handlers.NewApp(cfg, &logger, p, downloads)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// buildBackends selects one backend per operation from configuration.
func buildBackends(ctx context.Context, cfg *infra.Config, logger *infra.Logger, fetcher pipeline.Fetcher) (map[pipeline.Operation]pipeline.Backend, error) {
	backends := make(map[pipeline.Operation]pipeline.Backend, 3)

	var geminiClient *gemini.Client
	if cfg.ImageProvider == "gemini" || cfg.VideoProvider == "gemini" {
		client, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			ImageModel: cfg.GeminiImageModel,
			VideoModel: cfg.GeminiVideoModel,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		geminiClient = client
	}

	var runwayClient *runway.Client
	if cfg.ImageProvider == "runway" || cfg.VideoProvider == "runway" {
		runwayClient = runway.NewClient(runway.Options{
			APIKey:  cfg.RunwayAPIKey,
			BaseURL: cfg.RunwayBaseURL,
			Version: cfg.RunwayVersion,
			Logger:  logger,
		})
	}

	switch cfg.ImageProvider {
	case "openai":
		client := openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Logger:  logger,
		})
		backends[pipeline.OpTextToImage] = image.NewOpenAIBackend(client)
	case "gemini":
		backends[pipeline.OpTextToImage] = image.NewGeminiBackend(geminiClient)
	case "runway":
		backends[pipeline.OpTextToImage] = image.NewRunwayBackend(runwayClient)
	}

	switch cfg.VideoProvider {
	case "runway":
		backend := video.NewRunwayBackend(runwayClient)
		backends[pipeline.OpTextToVideo] = backend
		backends[pipeline.OpImageToVideo] = backend
	case "gemini":
		backend := video.NewGeminiBackend(geminiClient, fetcher)
		backends[pipeline.OpTextToVideo] = backend
		backends[pipeline.OpImageToVideo] = backend
	}

	return backends, nil
}
