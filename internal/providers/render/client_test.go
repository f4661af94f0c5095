package render

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stairviz/internal/domain"
)

func presetRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Source: domain.SourceAsset{Name: "stairs.jpg", MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}},
		Style: domain.StyleReference{
			Source: domain.StylePreset,
			Preset: &domain.StylePresetInfo{ID: "oak-01", Name: "Modern Oak", ReferenceURL: "https://cdn.stairviz.com/oak.jpg"},
		},
		TenantID: "tenant-7",
	}
}

func TestGeneratePresetPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("style_id"); got != "oak-01" {
			t.Fatalf("style_id = %q", got)
		}
		if got := r.FormValue("tenant_id"); got != "tenant-7" {
			t.Fatalf("tenant_id = %q", got)
		}
		if got := r.FormValue("instruction"); got == "" {
			t.Fatalf("instruction missing")
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("image part: %v", err)
		}
		defer f.Close()
		raw, _ := io.ReadAll(f)
		if len(raw) != 2 {
			t.Fatalf("image bytes = %d", len(raw))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "image": "https://cdn.stairviz.com/out.png"})
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	uri, err := client.Generate(context.Background(), presetRequest(), "restyle the staircase")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if uri != "https://cdn.stairviz.com/out.png" {
		t.Fatalf("uri = %q", uri)
	}
}

func TestGenerateUploadedStylePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("style_image"); err != nil {
			t.Fatalf("style_image part: %v", err)
		}
		if got := r.FormValue("style_id"); got != "" {
			t.Fatalf("unexpected style_id %q for uploaded style", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "image": "data:image/png;base64,AAEC"})
	}))
	defer srv.Close()

	client, _ := NewClient(Options{BaseURL: srv.URL})
	req := presetRequest()
	req.Style = domain.StyleReference{Source: domain.StyleUpload, Upload: []byte{1, 2, 3}}
	if _, err := client.Generate(context.Background(), req, "restyle"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGenerateBusinessErrorIsRejectedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "image rejected by moderation"})
	}))
	defer srv.Close()

	client, _ := NewClient(Options{BaseURL: srv.URL})
	_, err := client.Generate(context.Background(), presetRequest(), "restyle")
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want *RejectedError", err)
	}
	if rejected.Message != "image rejected by moderation" {
		t.Fatalf("message = %q", rejected.Message)
	}
	if errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("business error must not look like a transport failure")
	}
}

func TestGenerateTransportErrorWrapsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client, _ := NewClient(Options{BaseURL: srv.URL})
	_, err := client.Generate(context.Background(), presetRequest(), "restyle")
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("err = %v, want ErrNetworkFailure", err)
	}
}

func TestGenerateValidatesInputs(t *testing.T) {
	client, _ := NewClient(Options{BaseURL: "https://render.example.com"})
	req := presetRequest()
	req.Source.Data = nil
	if _, err := client.Generate(context.Background(), req, "x"); !errors.Is(err, domain.ErrMissingSourceAsset) {
		t.Fatalf("err = %v, want ErrMissingSourceAsset", err)
	}
	req = presetRequest()
	req.Style = domain.StyleReference{}
	if _, err := client.Generate(context.Background(), req, "x"); !errors.Is(err, domain.ErrMissingStyle) {
		t.Fatalf("err = %v, want ErrMissingStyle", err)
	}
}
