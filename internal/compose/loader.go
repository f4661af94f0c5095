package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	// JPEG and GIF decoding for image.Decode; PNG registers via the
	// exporter's encode import.
	_ "image/gif"
	_ "image/jpeg"

	"stairviz/pkg/datauri"
)

// Loader resolves an image URI (remote URL or inline data URI) into a
// decoded bitmap.
type Loader interface {
	Load(ctx context.Context, uri string) (image.Image, error)
}

// HTTPLoader fetches remote images and decodes inline data URIs.
type HTTPLoader struct {
	client *http.Client
}

// NewHTTPLoader constructs a loader with a bounded fetch timeout.
func NewHTTPLoader(client *http.Client) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLoader{client: client}
}

// Load decodes the image behind uri.
func (l *HTTPLoader) Load(ctx context.Context, uri string) (image.Image, error) {
	if datauri.IsDataURI(uri) {
		_, raw, err := datauri.Decode(uri)
		if err != nil {
			return nil, fmt.Errorf("compose: decode data uri: %w", err)
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("compose: decode inline image: %w", err)
		}
		return img, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("compose: build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compose: fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compose: fetch %s: status %d", uri, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("compose: read %s: %w", uri, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("compose: decode %s: %w", uri, err)
	}
	return img, nil
}
