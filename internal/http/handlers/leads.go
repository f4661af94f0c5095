package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"stairviz/internal/domain"
	"stairviz/internal/lead"
)

type estimateRequest struct {
	StyleID    string  `json:"style_id"`
	LinearFeet float64 `json:"linear_feet"`
	ZipCode    string  `json:"zip_code"`
}

// Estimate prices a monetized style and returns the pre-filled quote
// message for the accept path.
func (a *App) Estimate(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.ZipCode) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "zip_code required")
		return
	}

	settings, err := a.Tenants.Settings(r.Context(), snap.TenantID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load tenant")
		return
	}
	preset, found := settings.PresetByID(req.StyleID)
	if !found {
		a.error(w, http.StatusNotFound, "not_found", "unknown style preset")
		return
	}

	est, err := a.Gate.Estimate(r.Context(), snap.ID, preset, req.LinearFeet, req.ZipCode)
	if err != nil {
		if errors.Is(err, domain.ErrEstimateUnavailable) {
			a.error(w, http.StatusUnprocessableEntity, "estimate_unavailable", "we could not price this style right now")
			return
		}
		a.sessionError(w, r, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"min_price":          est.MinPrice,
		"max_price":          est.MaxPrice,
		"travel_distance_mi": est.DistanceMi,
		"breakdown":          est.Breakdown,
		"quote_message":      lead.QuoteMessage(preset, est),
	})
}

type quoteRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Quote submits a quote-request lead, attaching the session's estimate and
// the generated render when present.
func (a *App) Quote(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if !strings.Contains(req.Email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "a valid email is required")
		return
	}

	styleName, imageURI := "", ""
	if snap.Style != nil {
		styleName = snap.Style.Name()
	}
	if snap.Wizard.Result != nil {
		imageURI = snap.Wizard.Result.ImageURI
	}

	identity := domain.LeadIdentity{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := a.Gate.SubmitQuote(r.Context(), snap.ID, identity, req.Message, styleName, imageURI, snap.TenantID, nil); err != nil {
		a.Logger.Error().Err(err).Str("session_id", snap.ID).Msg("quote save failed")
		a.error(w, http.StatusBadGateway, "lead_save_failed", "we could not submit your request, please try again")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"submitted": true})
}
