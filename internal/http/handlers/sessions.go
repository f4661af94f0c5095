package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"stairviz/internal/domain"
	"stairviz/internal/generate"
	"stairviz/internal/session"
	"stairviz/internal/wizard"
)

type createSessionRequest struct {
	TenantID string `json:"tenant_id"`
	// Referrer lets the embed snippet forward document.referrer explicitly;
	// when absent the Referer header is used.
	Referrer string `json:"referrer"`
}

type wizardView struct {
	Step       int    `json:"step"`
	StepName   string `json:"step_name"`
	Direction  int    `json:"direction"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error,omitempty"`
	PreviewURI string `json:"preview_uri,omitempty"`
	StyleName  string `json:"style_name,omitempty"`
	ImageURI   string `json:"image_uri,omitempty"`
	Unlocked   bool   `json:"unlocked"`
}

func viewOf(s session.Session) wizardView {
	v := wizardView{
		Step:      int(s.Wizard.Step),
		StepName:  s.Wizard.Step.String(),
		Direction: s.Wizard.Direction,
		Loading:   s.Wizard.Loading,
		Error:     s.Wizard.Error,
		Unlocked:  s.Unlocked,
	}
	if s.Source != nil {
		v.PreviewURI = s.Source.PreviewURI
	}
	if s.Style != nil {
		v.StyleName = s.Style.Name()
	}
	if s.Wizard.Result != nil {
		v.ImageURI = s.Wizard.Result.ImageURI
	}
	return v
}

// SessionCreate opens a wizard session, running the embed origin check once.
func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.TenantID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "tenant_id required")
		return
	}

	settings, err := a.Tenants.Settings(r.Context(), req.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotConfigured) {
			a.error(w, http.StatusNotFound, "not_found", "unknown tenant")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load tenant")
		return
	}

	referer := req.Referrer
	if referer == "" {
		referer = r.Referer()
	}
	decision := a.Guard.Decide(referer, settings.EmbedWhitelist)
	if !decision.Allowed {
		// Deliberate access control: show the detected and configured
		// origins so the tenant can fix their whitelist.
		a.json(w, http.StatusForbidden, map[string]any{
			"error":              "embed_blocked",
			"message":            "this domain is not allowed to embed the tool",
			"detected_origin":    decision.Origin,
			"configured_domains": settings.EmbedWhitelist,
		})
		return
	}

	pipeline := generate.NewPipeline(a.Renderer, a.Logger)
	sess := a.Sessions.Create(settings.ID, decision, pipeline)
	a.json(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"wizard":     viewOf(*sess),
	})
}

// SessionGet returns the wizard snapshot.
func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]any{"wizard": viewOf(snap)})
}

type navigateRequest struct {
	Action string `json:"action"`
	Delta  int    `json:"delta"`
	Target int    `json:"target"`
}

// SessionNavigate applies paginate, jump-back and reset actions.
func (a *App) SessionNavigate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	err := a.Sessions.Update(id, func(s *session.Session) error {
		switch req.Action {
		case "paginate":
			next, err := s.Wizard.Paginate(req.Delta)
			if err != nil {
				return err
			}
			s.Wizard = next
		case "jump":
			next, err := s.Wizard.JumpBack(wizard.Step(req.Target))
			if err != nil {
				return err
			}
			s.Wizard = next
		case "reset":
			s.Wizard = s.Wizard.Reset()
			s.Source = nil
			s.Style = nil
			s.Estimate = nil
		default:
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		a.sessionError(w, r, err)
		return
	}

	snap, _ := a.Sessions.Snapshot(id)
	a.json(w, http.StatusOK, map[string]any{"wizard": viewOf(snap)})
}

// Upload ingests the staircase photo through the normalization chain and
// advances the wizard to the style step.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "photo exceeds the upload limit")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "photo file required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable upload")
		return
	}

	asset, err := a.Normalizer.Normalize(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "unsupported_image", localized(r, err.Error(), msgUnsupportedImage))
		return
	}

	err = a.Sessions.Update(snap.ID, func(s *session.Session) error {
		s.Source = &asset
		if s.Wizard.Step == wizard.StepUpload {
			next, err := s.Wizard.Paginate(1)
			if err != nil {
				return err
			}
			s.Wizard = next
		}
		return nil
	})
	if err != nil {
		a.sessionError(w, r, err)
		return
	}

	updated, _ := a.Sessions.Snapshot(snap.ID)
	a.json(w, http.StatusOK, map[string]any{
		"preview_uri": asset.PreviewURI,
		"compressed":  asset.Compressed,
		"wizard":      viewOf(updated),
	})
}

// session loads the session referenced by the URL, writing the error
// response itself when the lookup fails.
func (a *App) session(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	id := chi.URLParam(r, "session_id")
	snap, err := a.Sessions.Snapshot(id)
	if err != nil {
		a.sessionError(w, r, err)
		return session.Session{}, false
	}
	return snap, true
}

func (a *App) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		a.error(w, http.StatusNotFound, "session_expired", localized(r, "", msgSessionExpired))
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", "that step is not reachable from here")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "unexpected failure")
	}
}
