package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lulatiAI/ai-image-backend/internal/infra"
	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
	"github.com/lulatiAI/ai-image-backend/internal/store"
)

// App bundles the dependencies shared by all handlers.
type App struct {
	Config   *infra.Config
	Logger   *infra.Logger
	Pipeline *pipeline.Pipeline
	Store    *store.Memory
}

func NewApp(cfg *infra.Config, logger *infra.Logger, p *pipeline.Pipeline, s *store.Memory) *App {
	return &App{Config: cfg, Logger: logger, Pipeline: p, Store: s}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// pipelineError maps a pipeline failure to the HTTP contract. Only the
// error's opaque message is surfaced; wrapped causes stay in the logs.
func (a *App) pipelineError(w http.ResponseWriter, r *http.Request, err error) {
	kind := pipeline.KindOf(err)
	message := "internal error"
	var pe *pipeline.Error
	if e, ok := err.(*pipeline.Error); ok {
		pe = e
		message = e.Message
	}

	var status int
	switch kind {
	case pipeline.KindInvalidRequest, pipeline.KindForbidden:
		status = http.StatusBadRequest
	case pipeline.KindContentBlocked:
		status = http.StatusForbidden
	case pipeline.KindTimeout:
		status = http.StatusGatewayTimeout
	case pipeline.KindUpstreamUnavailable, pipeline.KindUpstreamFetch, pipeline.KindModerationError:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if a.Logger != nil {
		evt := a.Logger.Warn().Str("kind", string(kind)).Str("path", r.URL.Path)
		if pe != nil && pe.Err != nil {
			evt = evt.Err(pe.Err)
		}
		evt.Msg(message)
	}

	body := map[string]any{"error": string(kind), "message": message}
	if pe != nil && len(pe.Labels) > 0 {
		body["labels"] = pe.Labels
	}
	a.json(w, status, body)
}
