// Package crm calls the lead persistence and estimate collaborators.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stairviz/internal/domain"
)

// ErrMissingEndpoint indicates the client was configured without URLs.
var ErrMissingEndpoint = errors.New("crm: lead and estimate endpoints are required")

// Options configures the CRM client.
type Options struct {
	LeadEndpoint     string
	EstimateEndpoint string
	HTTPClient       *http.Client
	Logger           *zerolog.Logger
	RequestTimeout   time.Duration
}

// Client performs HTTP calls to the CRM collaborators.
type Client struct {
	leadEndpoint     string
	estimateEndpoint string
	httpClient       *http.Client
	logger           zerolog.Logger
}

// Attachment is an optional file shipped with a lead.
type Attachment struct {
	Name string
	Data []byte
}

type leadResponse struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error"`
	Warnings []string `json:"warnings"`
}

type estimateResponse struct {
	Success    bool               `json:"success"`
	Error      string             `json:"error"`
	MinPrice   float64            `json:"min_price"`
	MaxPrice   float64            `json:"max_price"`
	DistanceMi float64            `json:"travel_distance_mi"`
	Breakdown  map[string]float64 `json:"breakdown"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	lead := strings.TrimSpace(opts.LeadEndpoint)
	estimate := strings.TrimSpace(opts.EstimateEndpoint)
	if lead == "" || estimate == "" {
		return nil, ErrMissingEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		leadEndpoint:     lead,
		estimateEndpoint: estimate,
		httpClient:       httpClient,
		logger:           logger,
	}, nil
}

// SaveLead persists a lead record. Callers treat failures as best-effort:
// the returned error is logged, never shown to the visitor.
func (c *Client) SaveLead(ctx context.Context, lead domain.Lead, attachments []Attachment) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":       lead.Identity.Name,
		"email":      lead.Identity.Email,
		"phone":      lead.Identity.Phone,
		"message":    lead.Message,
		"style_name": lead.StyleName,
		"image_uri":  lead.ImageURI,
		"tenant_id":  lead.TenantID,
		"kind":       string(lead.Kind),
	}
	for key, val := range fields {
		if val == "" {
			continue
		}
		if err := mw.WriteField(key, val); err != nil {
			return fmt.Errorf("crm: build lead payload: %w", err)
		}
	}
	if lead.Estimate != nil {
		raw, err := json.Marshal(lead.Estimate)
		if err != nil {
			return fmt.Errorf("crm: encode estimate: %w", err)
		}
		if err := mw.WriteField("estimate", string(raw)); err != nil {
			return fmt.Errorf("crm: build lead payload: %w", err)
		}
	}
	for _, att := range attachments {
		part, err := mw.CreateFormFile("attachments", att.Name)
		if err != nil {
			return fmt.Errorf("crm: build lead payload: %w", err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return fmt.Errorf("crm: build lead payload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("crm: build lead payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.leadEndpoint, &body)
	if err != nil {
		return fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("crm: save lead: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("crm: read response: %w", err)
	}
	var out leadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("crm: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success {
		return fmt.Errorf("crm: lead rejected: %s", out.Error)
	}
	for _, warning := range out.Warnings {
		c.logger.Warn().Str("tenant_id", lead.TenantID).Msg("lead saved with warning: " + warning)
	}
	return nil
}

// Estimate prices a monetized style for the given footage and zip code.
func (c *Client) Estimate(ctx context.Context, styleID string, linearFeet float64, zipCode string) (domain.Estimate, error) {
	payload, err := json.Marshal(map[string]any{
		"style_id":    styleID,
		"linear_feet": linearFeet,
		"zip_code":    zipCode,
	})
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("crm: encode estimate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.estimateEndpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("crm: estimate: %w: %w", domain.ErrEstimateUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("crm: read response: %w", err)
	}
	var out estimateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Estimate{}, fmt.Errorf("crm: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "status " + strconv.Itoa(resp.StatusCode)
		}
		return domain.Estimate{}, fmt.Errorf("crm: estimate rejected: %s: %w", msg, domain.ErrEstimateUnavailable)
	}

	return domain.Estimate{
		StyleID:    styleID,
		LinearFeet: linearFeet,
		ZipCode:    zipCode,
		MinPrice:   out.MinPrice,
		MaxPrice:   out.MaxPrice,
		DistanceMi: out.DistanceMi,
		Breakdown:  out.Breakdown,
	}, nil
}
