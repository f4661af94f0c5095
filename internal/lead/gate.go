// Package lead implements the soft download gate and the estimate → quote
// funnel for monetized styles.
package lead

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stairviz/internal/domain"
	"stairviz/internal/providers/crm"
	"stairviz/internal/session"
)

// Saver persists lead records. Failures are tolerated.
type Saver interface {
	SaveLead(ctx context.Context, lead domain.Lead, attachments []crm.Attachment) error
}

// Estimator prices monetized styles.
type Estimator interface {
	Estimate(ctx context.Context, styleID string, linearFeet float64, zipCode string) (domain.Estimate, error)
}

// resumeDelay lets the client play its unlock animation before the pending
// download restarts.
const resumeDelay = 1200 * time.Millisecond

// Gate mediates downloads behind a once-per-session identity capture.
type Gate struct {
	sessions  *session.Store
	saver     Saver
	estimator Estimator
	logger    zerolog.Logger
}

// NewGate constructs a Gate.
func NewGate(sessions *session.Store, saver Saver, estimator Estimator, logger zerolog.Logger) *Gate {
	return &Gate{sessions: sessions, saver: saver, estimator: estimator, logger: logger}
}

// RequestDownload reports whether the session may download now. When the
// gate is still locked the download is remembered as pending and
// domain.ErrDownloadLocked is returned so the caller can present the
// identity form instead.
func (g *Gate) RequestDownload(sessionID string) error {
	return g.sessions.Update(sessionID, func(s *session.Session) error {
		if s.Unlocked {
			return nil
		}
		s.PendingDownload = true
		return domain.ErrDownloadLocked
	})
}

// UnlockResult is the outcome of a gate submission.
type UnlockResult struct {
	// Resume reports that a download was pending and should restart.
	Resume bool
	// ResumeAfter is how long the client should wait before restarting it.
	ResumeAfter time.Duration
}

// SubmitGate saves a soft lead best-effort, unlocks the session for its
// remaining lifetime and resumes any pending download. A failed lead save is
// logged, never surfaced: the visitor still gets their image.
func (g *Gate) SubmitGate(ctx context.Context, sessionID string, identity domain.LeadIdentity, styleName, imageURI, tenantID string) (UnlockResult, error) {
	lead := domain.Lead{
		Identity:  identity,
		StyleName: styleName,
		ImageURI:  imageURI,
		TenantID:  tenantID,
		Kind:      domain.LeadGateCapture,
	}
	if err := g.saver.SaveLead(ctx, lead, nil); err != nil {
		g.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("soft lead save failed")
	}

	var result UnlockResult
	err := g.sessions.Update(sessionID, func(s *session.Session) error {
		s.Unlocked = true
		if s.PendingDownload {
			s.PendingDownload = false
			result.Resume = true
			result.ResumeAfter = resumeDelay
		}
		return nil
	})
	if err != nil {
		return UnlockResult{}, err
	}
	return result, nil
}

// Estimate prices a monetized style and keeps the result on the session so
// the subsequent quote can attach it.
func (g *Gate) Estimate(ctx context.Context, sessionID string, preset domain.StylePresetInfo, linearFeet float64, zipCode string) (domain.Estimate, error) {
	if !preset.Monetized() {
		return domain.Estimate{}, fmt.Errorf("lead: style %s carries no price range: %w", preset.ID, domain.ErrEstimateUnavailable)
	}
	if linearFeet <= 0 {
		return domain.Estimate{}, fmt.Errorf("lead: linear footage must be positive: %w", domain.ErrEstimateUnavailable)
	}
	est, err := g.estimator.Estimate(ctx, preset.ID, linearFeet, zipCode)
	if err != nil {
		return domain.Estimate{}, err
	}
	if err := g.sessions.Update(sessionID, func(s *session.Session) error {
		e := est
		s.Estimate = &e
		return nil
	}); err != nil {
		return domain.Estimate{}, err
	}
	return est, nil
}

// QuoteMessage pre-fills the quote form message from an accepted estimate.
// It always names both price bounds and the visitor's zip code.
func QuoteMessage(style domain.StylePresetInfo, est domain.Estimate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I would like a quote for the %s style.", style.Name)
	fmt.Fprintf(&b, " Estimated range: $%.0f - $%.0f for %.0f linear ft", est.MinPrice, est.MaxPrice, est.LinearFeet)
	if est.ZipCode != "" {
		fmt.Fprintf(&b, " near %s", est.ZipCode)
	}
	b.WriteString(".")
	return b.String()
}

// SubmitQuote ships a quote-request lead carrying the session's estimate,
// if one was computed. Quote saves are not best-effort: the visitor asked
// for contact, so a failure is surfaced.
func (g *Gate) SubmitQuote(ctx context.Context, sessionID string, identity domain.LeadIdentity, message, styleName, imageURI, tenantID string, attachments []crm.Attachment) error {
	snap, err := g.sessions.Snapshot(sessionID)
	if err != nil {
		return err
	}
	lead := domain.Lead{
		Identity:  identity,
		Message:   message,
		StyleName: styleName,
		ImageURI:  imageURI,
		TenantID:  tenantID,
		Estimate:  snap.Estimate,
		Kind:      domain.LeadQuoteRequest,
	}
	return g.saver.SaveLead(ctx, lead, attachments)
}
