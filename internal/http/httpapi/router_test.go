package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lulatiAI/ai-image-backend/internal/http/handlers"
	"github.com/lulatiAI/ai-image-backend/internal/infra"
	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/providers/image"
	"github.com/lulatiAI/ai-image-backend/internal/providers/openai"
	"github.com/lulatiAI/ai-image-backend/internal/store"
)

// newStack wires a real router, pipeline and OpenAI client against a fake
// vendor server, the same assembly cmd/api performs.
func newStack(t *testing.T, vendor *httptest.Server) (http.Handler, *store.Memory) {
	t.Helper()
	downloads := store.NewMemory(time.Minute)
	t.Cleanup(downloads.Close)

	client := openai.NewClient(openai.Options{
		APIKey:     "sk-test",
		BaseURL:    vendor.URL,
		HTTPClient: vendor.Client(),
	})
	fetcher := pipeline.NewHTTPFetcher(vendor.Client())
	p := &pipeline.Pipeline{
		Validator: pipeline.NewValidator(pipeline.ValidatorConfig{
			AllowedImageSizes:  []string{"256x256", "512x512", "1024x1024"},
			AllowedVideoRatios: []string{"16:9", "9:16", "1:1"},
			DefaultImageSize:   "1024x1024",
			DefaultVideoRatio:  "16:9",
		}),
		Dispatcher: pipeline.NewDispatcher(map[pipeline.Operation]pipeline.Backend{
			pipeline.OpTextToImage: image.NewOpenAIBackend(client),
		}, 5*time.Second, nil),
		Gate:         pipeline.NewGate(nil, pipeline.GatePolicy{}),
		Materializer: pipeline.NewMaterializer(fetcher, downloads),
		Fetcher:      fetcher,
	}

	cfg := &infra.Config{}
	app := handlers.NewApp(cfg, nil, p, downloads)
	return NewRouter(app, cfg, zerolog.New(io.Discard)), downloads
}

func TestRouterGenerateAndDownloadFlow(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "cGl4ZWxz"}},
		})
	}))
	defer vendor.Close()

	router, _ := newStack(t, vendor)

	body, _ := json.Marshal(map[string]any{"prompt": "a cat", "delivery": "download"})
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body %s", rec.Code, rec.Body)
	}
	if rid := rec.Header().Get("X-Request-ID"); rid == "" {
		t.Fatal("request id header missing")
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	path, _ := resp["download_path"].(string)
	if path == "" {
		t.Fatalf("no download path in %v", resp)
	}

	dlRec := httptest.NewRecorder()
	router.ServeHTTP(dlRec, httptest.NewRequest(http.MethodGet, path, nil))
	if dlRec.Code != http.StatusOK {
		t.Fatalf("download status = %d", dlRec.Code)
	}
	if dlRec.Body.String() != "pixels" {
		t.Fatalf("download bytes = %q", dlRec.Body.String())
	}

	// Handles stay valid until expiry; a second fetch succeeds.
	again := httptest.NewRecorder()
	router.ServeHTTP(again, httptest.NewRequest(http.MethodGet, path, nil))
	if again.Code != http.StatusOK {
		t.Fatalf("repeat download status = %d", again.Code)
	}
}

func TestRouterVendorOutageIs502(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer vendor.Close()

	router, _ := newStack(t, vendor)

	body, _ := json.Marshal(map[string]any{"prompt": "a cat"})
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestRouterHealthz(t *testing.T) {
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer vendor.Close()

	router, _ := newStack(t, vendor)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}
