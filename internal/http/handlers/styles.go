package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"stairviz/internal/domain"
	"stairviz/internal/session"
)

type presetView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	ReferenceURL  string  `json:"reference_url,omitempty"`
	Monetized     bool    `json:"monetized"`
	PricePerFtMin float64 `json:"price_per_ft_min,omitempty"`
	PricePerFtMax float64 `json:"price_per_ft_max,omitempty"`
}

// TenantStyles lists the tenant's configured presets.
func (a *App) TenantStyles(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenant_id")
	settings, err := a.Tenants.Settings(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotConfigured) {
			a.error(w, http.StatusNotFound, "not_found", "unknown tenant")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load tenant")
		return
	}
	views := make([]presetView, 0, len(settings.Presets))
	for _, p := range settings.Presets {
		views = append(views, presetView{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			ReferenceURL:  p.ReferenceURL,
			Monetized:     p.Monetized(),
			PricePerFtMin: p.PricePerFtMin,
			PricePerFtMax: p.PricePerFtMax,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"styles": views})
}

type selectStyleRequest struct {
	PresetID string `json:"preset_id"`
}

// StyleSelect records the active style reference: a JSON body picks a
// preset, a multipart body uploads a custom style image. Either replaces
// the previous choice.
func (a *App) StyleSelect(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}

	var style domain.StyleReference
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "style image exceeds the upload limit")
			return
		}
		file, _, err := r.FormFile("style_image")
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "style_image file required")
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "unreadable style image")
			return
		}
		style = domain.StyleReference{Source: domain.StyleUpload, Upload: data}
	} else {
		var req selectStyleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PresetID == "" {
			a.error(w, http.StatusBadRequest, "bad_request", "preset_id required")
			return
		}
		settings, err := a.Tenants.Settings(r.Context(), snap.TenantID)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to load tenant")
			return
		}
		preset, found := settings.PresetByID(req.PresetID)
		if !found {
			a.error(w, http.StatusNotFound, "not_found", "unknown style preset")
			return
		}
		p := preset
		style = domain.StyleReference{Source: domain.StylePreset, Preset: &p}
	}

	err := a.Sessions.Update(snap.ID, func(s *session.Session) error {
		s.Style = &style
		return nil
	})
	if err != nil {
		a.sessionError(w, r, err)
		return
	}

	updated, _ := a.Sessions.Snapshot(snap.ID)
	a.json(w, http.StatusOK, map[string]any{"wizard": viewOf(updated)})
}
