package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	ProductDomain  string
	GeoIPDBPath    string
	AllowedOrigins []string

	// Collaborator endpoints.
	RenderBaseURL   string
	RenderAPIKey    string
	HEICConvertURL  string
	LeadServiceURL  string
	EstimateBaseURL string

	// Watermarking.
	ProductWatermarkURL string
	WatermarkWidthPct   float64
	WatermarkMinWidth   int
	WatermarkOpacity    float64
	WatermarkPadding    int

	// Ingestion budget.
	MaxUploadBytes  int64
	MaxImageWidth   int
	MaxImageHeight  int
	CompressQuality int

	SessionTTL       time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ProductDomain:  getEnv("PRODUCT_DOMAIN", "stairviz.com"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),

		RenderBaseURL:   getEnv("RENDER_BASE_URL", "https://render.stairviz.com/v1"),
		RenderAPIKey:    os.Getenv("RENDER_API_KEY"),
		HEICConvertURL:  getEnv("HEIC_CONVERT_URL", "https://convert.stairviz.com/v1/heic"),
		LeadServiceURL:  getEnv("LEAD_SERVICE_URL", "https://api.stairviz.com/v1/leads"),
		EstimateBaseURL: getEnv("ESTIMATE_BASE_URL", "https://api.stairviz.com/v1/estimates"),

		ProductWatermarkURL: getEnv("PRODUCT_WATERMARK_URL", "https://static.stairviz.com/watermark.png"),
		WatermarkWidthPct:   getEnvFloat("WATERMARK_WIDTH_PCT", 0.18),
		WatermarkMinWidth:   getEnvInt("WATERMARK_MIN_WIDTH", 96),
		WatermarkOpacity:    getEnvFloat("WATERMARK_OPACITY", 0.55),
		WatermarkPadding:    getEnvInt("WATERMARK_PADDING", 16),

		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaxImageWidth:   getEnvInt("MAX_IMAGE_WIDTH", 1920),
		MaxImageHeight:  getEnvInt("MAX_IMAGE_HEIGHT", 1920),
		CompressQuality: getEnvInt("COMPRESS_QUALITY", 82),

		SessionTTL:       time.Minute * time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.CompressQuality < 1 || cfg.CompressQuality > 100 {
		return nil, fmt.Errorf("COMPRESS_QUALITY must be in 1..100, got %d", cfg.CompressQuality)
	}
	if cfg.WatermarkWidthPct <= 0 || cfg.WatermarkWidthPct >= 1 {
		return nil, fmt.Errorf("WATERMARK_WIDTH_PCT must be in (0,1), got %v", cfg.WatermarkWidthPct)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
