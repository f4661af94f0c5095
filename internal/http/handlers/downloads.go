package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"stairviz/internal/compose"
	"stairviz/internal/domain"
)

// Download composes the watermarked artifact for an unlocked session. The
// first attempt in a locked session records the pending download and returns
// the gate challenge instead.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}
	if snap.Wizard.Result == nil || !snap.Wizard.Result.Success {
		a.error(w, http.StatusConflict, "no_result", "generate a render first")
		return
	}

	if err := a.Gate.RequestDownload(snap.ID); err != nil {
		if errors.Is(err, domain.ErrDownloadLocked) {
			a.json(w, http.StatusOK, map[string]any{
				"gate_required": true,
			})
			return
		}
		a.sessionError(w, r, err)
		return
	}

	settings, err := a.Tenants.Settings(r.Context(), snap.TenantID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load tenant")
		return
	}

	marks := []compose.Watermark{
		{URI: a.Cfg.ProductWatermarkURL, Corner: compose.BottomLeft},
	}
	if tenantMark := settings.TenantWatermark(); tenantMark != "" {
		marks = append(marks, compose.Watermark{URI: tenantMark, Corner: compose.BottomRight})
	}

	artifact, err := a.Compositor.Compose(r.Context(), snap.Wizard.Result.ImageURI, marks)
	if err != nil {
		// Degraded terminal outcome: hand back the untouched preview and
		// tell the visitor to save it manually.
		a.json(w, http.StatusOK, map[string]any{
			"success":     false,
			"error":       "export_unavailable",
			"message":     localized(r, "", msgExportFailed),
			"preview_uri": snap.Wizard.Result.ImageURI,
		})
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": artifact.Filename,
		"mime":     artifact.MIMEType,
		"data_uri": artifact.DataURI,
		"base_only": artifact.BaseOnly,
		// The embed snippet triggers an automatic download only when the
		// tool is not iframed; an explicit confirmation link is always
		// shown either way.
		"auto_download": !embedded(snap.Origin),
	})
}

// embedded reports whether the session was opened from a third-party page.
func embedded(origin domain.OriginDecision) bool {
	return origin.Origin != "" && origin.Matched != "localhost"
}

type gateSubmitRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// GateSubmit captures the visitor identity, unlocks the session and resumes
// the pending download.
func (a *App) GateSubmit(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}
	var req gateSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" || !strings.Contains(req.Email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "name and a valid email are required")
		return
	}

	identity := domain.LeadIdentity{Name: req.Name, Email: req.Email, Phone: req.Phone}
	styleName, imageURI := "", ""
	if snap.Style != nil {
		styleName = snap.Style.Name()
	}
	if snap.Wizard.Result != nil {
		imageURI = snap.Wizard.Result.ImageURI
	}

	result, err := a.Gate.SubmitGate(r.Context(), snap.ID, identity, styleName, imageURI, snap.TenantID)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"unlocked":        true,
		"resume_download": result.Resume,
		"resume_after_ms": result.ResumeAfter.Milliseconds(),
	})
}
