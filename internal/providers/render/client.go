// Package render calls the remote generation service that produces the
// AI-edited staircase image.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stairviz/internal/domain"
)

// ErrMissingBaseURL indicates the client was configured without a URL.
var ErrMissingBaseURL = errors.New("render: base url is required")

// RejectedError carries a structured failure reported by the generation
// service, e.g. a moderation rejection. It is distinct from transport
// failures so the two can be messaged differently.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "render: rejected: " + e.Message
}

// Options configures the generation client.
type Options struct {
	BaseURL        string
	APIKey         string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the generation service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

type generateResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
	Error   string `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			// Generation is slow; the transport default is the only
			// client-side budget.
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Generate submits one multipart generation request and returns the image
// URI (remote URL or inline data URI). Transport failures wrap
// domain.ErrNetworkFailure; structured rejections surface as *RejectedError.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest, instruction string) (string, error) {
	if len(req.Source.Data) == 0 {
		return "", fmt.Errorf("render: %w", domain.ErrMissingSourceAsset)
	}
	if !req.Style.Valid() {
		return "", fmt.Errorf("render: %w", domain.ErrMissingStyle)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writePayload(mw, req, instruction); err != nil {
		return "", fmt.Errorf("render: build payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("render: build payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generations", &body)
	if err != nil {
		return "", fmt.Errorf("render: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("render: http request: %w: %w", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("render: read response: %w: %w", domain.ErrNetworkFailure, err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("render: decode response (status %d): %w: %w", resp.StatusCode, domain.ErrNetworkFailure, err)
	}
	if !out.Success || out.Image == "" {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("generation failed with status %d", resp.StatusCode)
		}
		return "", &RejectedError{Message: msg}
	}

	c.logger.Info().
		Str("tenant_id", req.TenantID).
		Str("style", req.Style.Name()).
		Dur("took", time.Since(start)).
		Msg("generation succeeded")
	return out.Image, nil
}

func writePayload(mw *multipart.Writer, req domain.GenerationRequest, instruction string) error {
	part, err := mw.CreateFormFile("image", req.Source.Name)
	if err != nil {
		return err
	}
	if _, err := part.Write(req.Source.Data); err != nil {
		return err
	}

	switch req.Style.Source {
	case domain.StylePreset:
		if err := mw.WriteField("style_id", req.Style.Preset.ID); err != nil {
			return err
		}
		if err := mw.WriteField("style_name", req.Style.Preset.Name); err != nil {
			return err
		}
		if err := mw.WriteField("style_reference_url", req.Style.Preset.ReferenceURL); err != nil {
			return err
		}
	case domain.StyleUpload:
		stylePart, err := mw.CreateFormFile("style_image", "style-reference")
		if err != nil {
			return err
		}
		if _, err := stylePart.Write(req.Style.Upload); err != nil {
			return err
		}
	}

	if err := mw.WriteField("instruction", instruction); err != nil {
		return err
	}
	return mw.WriteField("tenant_id", req.TenantID)
}
