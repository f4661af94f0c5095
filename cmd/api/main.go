package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"stairviz/internal/compose"
	"stairviz/internal/domain"
	"stairviz/internal/embedguard"
	"stairviz/internal/http/handlers"
	httpapi "stairviz/internal/http/httpapi"
	"stairviz/internal/infra"
	"stairviz/internal/infra/geoip"
	"stairviz/internal/lead"
	"stairviz/internal/middleware"
	"stairviz/internal/normalize"
	"stairviz/internal/providers/crm"
	"stairviz/internal/providers/heic"
	"stairviz/internal/providers/render"
	"stairviz/internal/session"
	"stairviz/internal/tenant"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Tenant settings come from PostgreSQL when configured; a single-tenant
	// deployment runs without a database.
	var tenants tenant.Store
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		tenants = tenant.NewPGStore(dbpool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, serving the default tenant only")
		tenants = tenant.NewStaticStore(domain.TenantSettings{
			ID:   "default",
			Name: "stairviz",
		})
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	renderer, err := render.NewClient(render.Options{
		BaseURL: cfg.RenderBaseURL,
		APIKey:  cfg.RenderAPIKey,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build render client")
	}
	converter, err := heic.NewClient(heic.Options{
		Endpoint: cfg.HEICConvertURL,
		Logger:   &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build heic client")
	}
	crmClient, err := crm.NewClient(crm.Options{
		LeadEndpoint:     cfg.LeadServiceURL,
		EstimateEndpoint: cfg.EstimateBaseURL,
		Logger:           &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build crm client")
	}

	sessions := session.NewStore(cfg.SessionTTL)

	app := &handlers.App{
		Cfg:      cfg,
		Logger:   logger,
		Tenants:  tenants,
		Sessions: sessions,
		Normalizer: normalize.New(normalize.Options{
			MaxWidth:  cfg.MaxImageWidth,
			MaxHeight: cfg.MaxImageHeight,
			Quality:   cfg.CompressQuality,
			Converter: converter,
			Logger:    &logger,
		}),
		Renderer: renderer,
		Compositor: compose.New(compose.Options{
			WidthPct: cfg.WatermarkWidthPct,
			MinWidth: cfg.WatermarkMinWidth,
			Opacity:  cfg.WatermarkOpacity,
			Padding:  cfg.WatermarkPadding,
			Logger:   &logger,
		}),
		Gate:  lead.NewGate(sessions, crmClient, crmClient, logger),
		Guard: embedguard.New(cfg.ProductDomain),
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		CountryLookup:  lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != os.ErrClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
