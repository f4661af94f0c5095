package domain

// GenerationRequest pairs the visitor's photo with the chosen style and the
// tenant the usage is attributed to. Constructed fresh per attempt and never
// mutated after submission.
type GenerationRequest struct {
	Source   SourceAsset
	Style    StyleReference
	TenantID string
}

// GenerationResult is the resolved outcome of one generation attempt.
type GenerationResult struct {
	Success bool
	// ImageURI is a remote URL or inline data URI when Success is true.
	ImageURI string
	// Message carries the failure text when Success is false.
	Message string
	// Transport marks failures that never reached the generation service,
	// so the UI can message them as retryable rather than as rejections.
	Transport bool
}

// OriginDecision is the once-per-page-load embed verdict.
type OriginDecision struct {
	Allowed bool
	// Origin is the normalized referrer origin the decision was made on.
	Origin string
	// Matched names the whitelist entry that allowed the origin, if any.
	Matched string
}
