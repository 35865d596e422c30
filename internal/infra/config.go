package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	CORSOrigins      []string
	RateLimitPerMin  int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	GenerateTimeout  time.Duration
	DownloadTTL      time.Duration

	ImageProvider string
	VideoProvider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	RunwayAPIKey  string
	RunwayBaseURL string
	RunwayVersion string

	GeminiAPIKey     string
	GeminiImageModel string
	GeminiVideoModel string

	ModerationEnabled   bool
	ModerateVideos      bool
	ModerationThreshold float32
	AWSRegion           string

	DenylistTerms      []string
	AllowedImageSizes  []string
	AllowedVideoRatios []string
	DefaultImageSize   string
	DefaultVideoRatio  string
	MaxDurationSeconds int
	MaxQuantity        int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Credentials for the selected providers are required;
// their absence is a startup error, never a per-request one.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		GenerateTimeout:  time.Second * time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 300)),
		DownloadTTL:      time.Second * time.Duration(getEnvInt("DOWNLOAD_TTL_SECONDS", 900)),

		ImageProvider: getEnv("IMAGE_PROVIDER", "openai"),
		VideoProvider: getEnv("VIDEO_PROVIDER", "runway"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "dall-e-3"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		RunwayAPIKey:  os.Getenv("RUNWAY_API_KEY"),
		RunwayBaseURL: getEnv("RUNWAY_BASE_URL", "https://api.dev.runwayml.com/v1"),
		RunwayVersion: getEnv("RUNWAY_API_VERSION", "2024-11-06"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
		GeminiVideoModel: getEnv("GEMINI_VIDEO_MODEL", "veo-2.0-generate-001"),

		ModerationEnabled:   getEnvBool("MODERATION_ENABLED", true),
		ModerateVideos:      getEnvBool("MODERATE_VIDEOS", false),
		ModerationThreshold: getEnvFloat32("MODERATION_MIN_CONFIDENCE", 70),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),

		DenylistTerms:      getEnvList("DENYLIST_TERMS", nil),
		AllowedImageSizes:  getEnvList("ALLOWED_IMAGE_SIZES", []string{"256x256", "512x512", "1024x1024"}),
		AllowedVideoRatios: getEnvList("ALLOWED_VIDEO_RATIOS", []string{"16:9", "9:16", "1:1"}),
		DefaultImageSize:   getEnv("DEFAULT_IMAGE_SIZE", "1024x1024"),
		DefaultVideoRatio:  getEnv("DEFAULT_VIDEO_RATIO", "16:9"),
		MaxDurationSeconds: getEnvInt("MAX_DURATION_SECONDS", 10),
		MaxQuantity:        getEnvInt("MAX_QUANTITY", 4),
	}

	switch cfg.ImageProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when IMAGE_PROVIDER=openai")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when IMAGE_PROVIDER=gemini")
		}
	case "runway":
		if cfg.RunwayAPIKey == "" {
			return nil, fmt.Errorf("RUNWAY_API_KEY is required when IMAGE_PROVIDER=runway")
		}
	default:
		return nil, fmt.Errorf("unsupported IMAGE_PROVIDER %q", cfg.ImageProvider)
	}

	switch cfg.VideoProvider {
	case "runway":
		if cfg.RunwayAPIKey == "" {
			return nil, fmt.Errorf("RUNWAY_API_KEY is required when VIDEO_PROVIDER=runway")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when VIDEO_PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unsupported VIDEO_PROVIDER %q", cfg.VideoProvider)
	}

	if cfg.ModerationThreshold < 0 || cfg.ModerationThreshold > 100 {
		return nil, fmt.Errorf("MODERATION_MIN_CONFIDENCE must be between 0 and 100")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat32(key string, fallback float32) float32 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
