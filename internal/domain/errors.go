package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrEmbedBlocked         = errors.New("embed origin blocked")
	ErrUnsupportedImage     = errors.New("unsupported image")
	ErrGenerationInFlight   = errors.New("generation already in flight")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrNetworkFailure       = errors.New("network failure")
	ErrExportUnavailable    = errors.New("export unavailable")
	ErrMissingSourceAsset   = errors.New("missing source asset")
	ErrMissingStyle         = errors.New("missing style reference")
	ErrEstimateUnavailable  = errors.New("estimate unavailable")
	ErrInvalidTransition    = errors.New("invalid wizard transition")
	ErrDownloadLocked       = errors.New("download locked")
	ErrTenantNotConfigured  = errors.New("tenant not configured")
)
