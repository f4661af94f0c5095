package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.ProductDomain != "stairviz.com" {
		t.Fatalf("product domain = %q", cfg.ProductDomain)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("max upload = %d, want %d", cfg.MaxUploadBytes, 10<<20)
	}
	if cfg.SessionTTL != 120*time.Minute {
		t.Fatalf("session ttl = %v", cfg.SessionTTL)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("COMPRESS_QUALITY", "150")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for out-of-range quality")
	}
	t.Setenv("COMPRESS_QUALITY", "82")
	t.Setenv("WATERMARK_WIDTH_PCT", "1.5")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for out-of-range watermark width")
	}
}

func TestLoadConfigOriginList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins = %v, want 2 entries", cfg.AllowedOrigins)
	}
	if cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins[1] = %q", cfg.AllowedOrigins[1])
	}
}
