package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"stairviz/internal/compose"
	"stairviz/internal/embedguard"
	"stairviz/internal/generate"
	"stairviz/internal/infra"
	"stairviz/internal/lead"
	"stairviz/internal/normalize"
	"stairviz/internal/session"
	"stairviz/internal/tenant"
)

// App is the handler container with its injected collaborators.
type App struct {
	Cfg        *infra.Config
	Logger     zerolog.Logger
	Tenants    tenant.Store
	Sessions   *session.Store
	Normalizer *normalize.Normalizer
	Renderer   generate.Renderer
	Compositor *compose.Compositor
	Gate       *lead.Gate
	Guard      *embedguard.Guard
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
