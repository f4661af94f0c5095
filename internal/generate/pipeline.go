// Package generate drives a single-flight generation request against the
// remote render service and normalizes its outcome.
package generate

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"stairviz/internal/domain"
	"stairviz/internal/providers/render"
)

// Renderer is the remote generation collaborator.
type Renderer interface {
	Generate(ctx context.Context, req domain.GenerationRequest, instruction string) (string, error)
}

// Pipeline performs at most one outstanding generation call per wizard
// session. A second concurrent call is rejected, never queued.
type Pipeline struct {
	renderer Renderer
	logger   zerolog.Logger
	flight   *semaphore.Weighted
}

// NewPipeline constructs a Pipeline around the given renderer.
func NewPipeline(renderer Renderer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		renderer: renderer,
		logger:   logger,
		flight:   semaphore.NewWeighted(1),
	}
}

// Busy reports whether a generation call is outstanding.
func (p *Pipeline) Busy() bool {
	if !p.flight.TryAcquire(1) {
		return true
	}
	p.flight.Release(1)
	return false
}

// Generate validates the request, performs exactly one network call and maps
// the outcome. There is no automatic retry and no cancellation of an
// in-flight call; callers wait for resolution.
func (p *Pipeline) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if len(req.Source.Data) == 0 {
		return domain.GenerationResult{}, domain.ErrMissingSourceAsset
	}
	if !req.Style.Valid() {
		return domain.GenerationResult{}, domain.ErrMissingStyle
	}
	if !p.flight.TryAcquire(1) {
		return domain.GenerationResult{}, domain.ErrGenerationInFlight
	}
	defer p.flight.Release(1)

	uri, err := p.renderer.Generate(ctx, req, BuildInstruction(req.Style))
	if err == nil {
		return domain.GenerationResult{Success: true, ImageURI: uri}, nil
	}

	var rejected *render.RejectedError
	switch {
	case errors.As(err, &rejected):
		// Server-reported business error, safe to surface verbatim.
		p.logger.Warn().Str("tenant_id", req.TenantID).Str("reason", rejected.Message).Msg("generation rejected")
		return domain.GenerationResult{Message: rejected.Message}, nil
	case errors.Is(err, domain.ErrNetworkFailure):
		p.logger.Error().Err(err).Str("tenant_id", req.TenantID).Msg("generation transport failure")
		return domain.GenerationResult{
			Message:   "We could not reach the render service. Please try again.",
			Transport: true,
		}, nil
	default:
		return domain.GenerationResult{}, err
	}
}
