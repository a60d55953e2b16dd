package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"docshield/internal/config"
	"docshield/internal/core/ports"
	"docshield/internal/core/usecase"
	"docshield/internal/infrastructure/extract"
	"docshield/internal/infrastructure/fingerprint"
	"docshield/internal/infrastructure/qr"
	"docshield/internal/infrastructure/queue/nats"
	"docshield/internal/infrastructure/queue/noop"
	"docshield/internal/infrastructure/registry/postgres"
	"docshield/internal/infrastructure/resilience"
	"docshield/internal/infrastructure/storage/localfs"
	"docshield/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Registry ports.DocumentRegistry
	Storage  ports.ObjectStorage
	Events   ports.EventPublisher

	VerifyUC ports.DocumentVerifier
	IssueUC  ports.DocumentIssuer

	HTTPMetrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	registry := postgres.NewRegistry(db,
		postgres.WithLookupTimeout(cfg.RegistryLookupTimeout),
		postgres.WithExecutor(resilience.NewExecutor(resilience.RegistryPolicy())),
	)
	if err := registry.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	var events ports.EventPublisher
	var closeEvents func()
	if cfg.NATSURL != "" {
		publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.PublishPolicy()),
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
		closeEvents = publisher.Close
	} else {
		events = noop.New()
	}

	fpService := fingerprint.New()
	decoder := qr.NewDecoder()
	renderer := qr.NewRenderer()
	extractor := extract.New()

	httpMetrics := metrics.NewHTTPServerMetrics("docshield-api")
	verifyMetrics := metrics.NewVerificationMetrics("docshield-api", httpMetrics.Registry())

	verifyUC := usecase.NewVerifyService(
		registry, decoder, fpService, events, verifyMetrics, logger,
		usecase.Thresholds{Match: cfg.FPMatchThreshold, Reject: cfg.FPRejectThreshold},
	)
	issueUC := usecase.NewIssueService(
		registry, fpService, renderer, storage, extractor, events, logger, cfg.VerifyBaseURL,
	)

	return &App{
		Config: cfg,

		Registry: registry,
		Storage:  storage,
		Events:   events,

		VerifyUC: verifyUC,
		IssueUC:  issueUC,

		HTTPMetrics: httpMetrics,

		closeFn: func() {
			if closeEvents != nil {
				closeEvents()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
