package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Checker-Finance/personio-adapter/internal/api"
	"github.com/Checker-Finance/personio-adapter/internal/rate"
	"github.com/Checker-Finance/personio-adapter/internal/registry"
	internalsecrets "github.com/Checker-Finance/personio-adapter/internal/secrets"
	"github.com/Checker-Finance/personio-adapter/pkg/config"
	"github.com/Checker-Finance/personio-adapter/pkg/logger"
	"github.com/Checker-Finance/personio-adapter/pkg/secrets"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [personio-adapter]...")

	// --- Secrets provider ---
	var provider secrets.Provider
	switch cfg.SecretsBackend {
	case "env":
		provider = secrets.NewEnvProvider()
	case "aws":
		awsProvider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
		provider = awsProvider
	default:
		logg.Fatalw("unknown secrets backend", "backend", cfg.SecretsBackend)
	}

	// --- Per-tenant credential resolver (secrets cached in-memory) ---
	configCache := secrets.NewCache[internalsecrets.TenantConfig](cfg.CacheTTL)
	stopCleaner := make(chan struct{})
	go configCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

	resolver := internalsecrets.NewResolver(
		logg.Desugar(),
		cfg.Env,
		cfg.Venue,
		provider,
		configCache,
	)

	// --- Rate limiter (one bucket per tenant) ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.PersonioRateRPS,
		Burst:             cfg.PersonioRateBurst,
	})

	// --- Tenant registry ---
	reg := registry.New(logg.Desugar(), resolver, registry.Options{
		BaseURL:    cfg.PersonioBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.PersonioTimeout},
		RateMgr:    rateMgr,
	})

	if cfg.WarmOnStart {
		warmCtx, cancelWarm := context.WithTimeout(ctx, 15*time.Second)
		n, err := reg.Warm(warmCtx)
		cancelWarm()
		if err != nil {
			logg.Warnw("failed to discover tenants", "error", err)
		} else {
			logg.Infow("discovered Personio tenants", "count", n, "tenants", reg.Tenants())
		}
	}

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	hrHandler := api.NewHRHandler(logg.Desugar(), reg)
	api.RegisterRoutes(app, reg, hrHandler)

	// Start HTTP server
	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[personio-adapter] running",
		"env", cfg.Env,
		"base_url", cfg.PersonioBaseURL,
		"secrets_backend", cfg.SecretsBackend)

	<-ctx.Done()
	logg.Info("shutting down [personio-adapter]...")

	close(stopCleaner)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
}
