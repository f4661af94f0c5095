package handlers

import (
	"errors"
	"net/http"

	"stairviz/internal/domain"
	"stairviz/internal/session"
)

// Generate submits the single-flight generation request. The wizard enters
// the Result loading state before the remote call and is resolved with its
// outcome: success stays on Result, any failure returns to Style with the
// inputs preserved.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	snap, ok := a.session(w, r)
	if !ok {
		return
	}
	if snap.Source == nil {
		a.error(w, http.StatusConflict, "missing_source", "upload a staircase photo first")
		return
	}
	if snap.Style == nil {
		a.error(w, http.StatusConflict, "missing_style", "pick or upload a style first")
		return
	}

	// Committing Submit first serializes concurrent attempts: a second
	// request finds the wizard already in the loading state and conflicts.
	err := a.Sessions.Update(snap.ID, func(s *session.Session) error {
		next, err := s.Wizard.Submit()
		if err != nil {
			return err
		}
		s.Wizard = next
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) && snap.Wizard.Loading {
			a.error(w, http.StatusConflict, "generation_in_flight", "a render is already in progress")
			return
		}
		a.sessionError(w, r, err)
		return
	}

	req := domain.GenerationRequest{
		Source:   *snap.Source,
		Style:    *snap.Style,
		TenantID: snap.TenantID,
	}
	result, err := snap.Pipeline.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationInFlight) {
			a.error(w, http.StatusConflict, "generation_in_flight", "a render is already in progress")
			return
		}
		// Roll the wizard back to an actionable step before reporting.
		result = domain.GenerationResult{Message: "unexpected failure", Transport: true}
		a.Logger.Error().Err(err).Str("session_id", snap.ID).Msg("generation pipeline error")
	}
	if result.Transport {
		result.Message = localized(r, result.Message, msgNetworkFailure)
	}

	err = a.Sessions.Update(snap.ID, func(s *session.Session) error {
		next, err := s.Wizard.Resolve(result)
		if err != nil {
			return err
		}
		s.Wizard = next
		return nil
	})
	if err != nil {
		a.sessionError(w, r, err)
		return
	}

	updated, _ := a.Sessions.Snapshot(snap.ID)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
		if !result.Transport {
			status = http.StatusUnprocessableEntity
		}
	}
	a.json(w, status, map[string]any{
		"success":   result.Success,
		"image_uri": result.ImageURI,
		"message":   result.Message,
		"transport": result.Transport,
		"wizard":    viewOf(updated),
	})
}