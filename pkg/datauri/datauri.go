// Package datauri encodes and decodes RFC 2397 data URIs for image payloads.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNotDataURI is returned when the input does not carry the data: scheme.
var ErrNotDataURI = errors.New("datauri: not a data uri")

// Encode renders payload as a base64 data URI with the given MIME type.
func Encode(mimeType string, payload []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// Decode parses a base64 data URI into its MIME type and raw bytes.
func Decode(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("datauri: missing payload separator")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("datauri: only base64 payloads supported, got %q", meta)
	}
	mimeType := strings.TrimSuffix(meta, ";base64")
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, fmt.Errorf("datauri: decode payload: %w", err)
	}
	return mimeType, raw, nil
}

// IsDataURI reports whether uri uses the data: scheme.
func IsDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}
