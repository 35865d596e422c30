package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lulatiAI/ai-image-backend/internal/middleware"
	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
)

// maxUploadBytes bounds multipart source-image uploads.
const maxUploadBytes = 16 << 20

type generateRequest struct {
	Prompt          string `json:"prompt"`
	Size            string `json:"size"`
	Ratio           string `json:"ratio"`
	DurationSeconds int    `json:"duration_seconds"`
	Quantity        int    `json:"quantity"`
	Model           string `json:"model"`
	Delivery        string `json:"delivery"`
	ImageURL        string `json:"image_url"`
}

// ImagesGenerate handles POST /v1/images/generate.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	raw, ok := a.decodeJSON(w, r)
	if !ok {
		return
	}
	raw.Operation = string(pipeline.OpTextToImage)
	a.run(w, r, raw)
}

// VideosGenerate handles POST /v1/videos/generate (text-to-video).
func (a *App) VideosGenerate(w http.ResponseWriter, r *http.Request) {
	raw, ok := a.decodeJSON(w, r)
	if !ok {
		return
	}
	raw.Operation = string(pipeline.OpTextToVideo)
	a.run(w, r, raw)
}

// VideosAnimate handles POST /v1/videos/animate (image-to-video). The source
// image arrives either as an image_url field in JSON or as an "image" file
// part in a multipart form.
func (a *App) VideosAnimate(w http.ResponseWriter, r *http.Request) {
	var raw pipeline.RawInput
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
			return
		}
		raw.Prompt = r.FormValue("prompt")
		raw.Size = r.FormValue("size")
		if raw.Size == "" {
			raw.Size = r.FormValue("ratio")
		}
		raw.Model = r.FormValue("model")
		raw.Delivery = r.FormValue("delivery")
		raw.SourceImageURL = r.FormValue("image_url")
		if d := r.FormValue("duration_seconds"); d != "" {
			if n, err := strconv.Atoi(d); err == nil {
				raw.DurationSeconds = n
			}
		}
		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
			if readErr != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "failed to read image upload")
				return
			}
			raw.SourceImageData = data
			raw.SourceImageMIME = header.Header.Get("Content-Type")
		}
	} else {
		decoded, ok := a.decodeJSON(w, r)
		if !ok {
			return
		}
		raw = decoded
	}
	raw.Operation = string(pipeline.OpImageToVideo)
	a.run(w, r, raw)
}

func (a *App) decodeJSON(w http.ResponseWriter, r *http.Request) (pipeline.RawInput, bool) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return pipeline.RawInput{}, false
	}
	size := req.Size
	if size == "" {
		size = req.Ratio
	}
	return pipeline.RawInput{
		Prompt:          req.Prompt,
		Size:            size,
		DurationSeconds: req.DurationSeconds,
		Quantity:        req.Quantity,
		Model:           req.Model,
		Delivery:        req.Delivery,
		SourceImageURL:  req.ImageURL,
	}, true
}

func (a *App) run(w http.ResponseWriter, r *http.Request, raw pipeline.RawInput) {
	raw.RequestID = middleware.RequestIDFromContext(r.Context())

	delivery, err := a.Pipeline.Run(r.Context(), raw)
	if err != nil {
		a.pipelineError(w, r, err)
		return
	}

	switch delivery.Mode {
	case pipeline.DeliverURL:
		body := map[string]any{"url": delivery.URL}
		if len(delivery.URLs) > 1 {
			body["urls"] = delivery.URLs
		}
		a.json(w, http.StatusOK, body)
	case pipeline.DeliverInline:
		w.Header().Set("Content-Type", delivery.MIME)
		w.Header().Set("Content-Disposition", "attachment; filename="+attachmentName(delivery.MIME))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(delivery.Data)
	case pipeline.DeliverDownload:
		a.json(w, http.StatusOK, map[string]any{
			"download_id":   delivery.DownloadID,
			"download_path": delivery.DownloadPath,
			"expires_at":    delivery.ExpiresAt.UTC().Format(time.RFC3339),
		})
	default:
		a.error(w, http.StatusInternalServerError, "internal", "unknown delivery mode")
	}
}

func attachmentName(mime string) string {
	switch mime {
	case "image/png":
		return "generated.png"
	case "image/jpeg":
		return "generated.jpg"
	case "video/mp4":
		return "generated.mp4"
	case "application/zip":
		return "generated.zip"
	}
	return "generated.bin"
}
