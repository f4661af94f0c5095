// Package heic calls the remote HEIC/HEIF conversion service.
package heic

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
)

// ErrMissingEndpoint indicates the client was configured without a URL.
var ErrMissingEndpoint = errors.New("heic: endpoint is required")

// Options configures the conversion client.
type Options struct {
	Endpoint       string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the conversion service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

type convertResponse struct {
	Success bool   `json:"success"`
	Base64  string `json:"base64"`
	Error   string `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{endpoint: endpoint, httpClient: httpClient, logger: logger}, nil
}

// Convert ships the original file bytes to the conversion service and
// returns the re-encoded image as a data URI.
func (c *Client) Convert(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("heic: build payload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("heic: build payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("heic: build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("heic: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("heic: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("heic: read response: %w", err)
	}

	var out convertResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("heic: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success || out.Base64 == "" {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("heic: conversion rejected: %s", msg)
	}
	c.logger.Debug().Str("file", filename).Int("bytes", len(data)).Msg("heic converted")
	return out.Base64, nil
}
