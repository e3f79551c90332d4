package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/unig/internal/api"
	"github.com/amaumene/unig/internal/config"
	"github.com/amaumene/unig/internal/controllers"
	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/services/account"
	"github.com/amaumene/unig/internal/services/catalog"
	"github.com/amaumene/unig/internal/services/gateway"
	"github.com/amaumene/unig/internal/telemetry"
)

var version = "dev"

// client is the object graph shared by every command
type client struct {
	app       *controllers.App
	session   *controllers.SessionStore
	inspector *api.Server // nil unless INSPECTOR_ADDR or --inspect is set
}

func provideDatabase(cfg *config.Config, logger *logrus.Logger) (*models.Database, func(), error) {
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.WithField("path", cfg.DatabaseFile).Debug("Database initialized")
	return db, func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}, nil
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// provideTracerProvider exports gateway spans to TRACE_FILE when it is set
func provideTracerProvider(cfg *config.Config, logger *logrus.Logger) (*sdktrace.TracerProvider, func(), error) {
	var exporters []sdktrace.SpanExporter
	closeFile := func() error { return nil }
	if cfg.TraceFile != "" {
		exporter, closer, err := telemetry.OpenTraceFile(cfg.TraceFile)
		if err != nil {
			return nil, nil, err
		}
		exporters = append(exporters, exporter)
		closeFile = closer
		logger.WithField("path", cfg.TraceFile).Debug("Exporting traces")
	}

	provider := telemetry.NewTracerProvider("unig", version, exporters...)
	otel.SetTracerProvider(provider)
	return provider, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx, provider); err != nil {
			logger.WithError(err).Warn("Failed to flush traces")
		}
		if err := closeFile(); err != nil {
			logger.WithError(err).Warn("Failed to close trace file")
		}
	}, nil
}

func provideTracer(provider *sdktrace.TracerProvider) trace.Tracer {
	return telemetry.Tracer(provider)
}

func provideCatalogClient(cfg *config.Config, metrics *telemetry.Metrics, tracer trace.Tracer, logger *logrus.Logger) *catalog.Client {
	gw := gateway.NewClient(gateway.Options{
		Name:          "catalog",
		BaseURL:       cfg.CatalogAPIURL,
		Timeout:       cfg.RequestTimeout,
		RatePerSecond: cfg.GatewayRatePerSecond,
		Metrics:       metrics,
		Tracer:        tracer,
	}, logger)
	return catalog.NewClient(gw, cfg.DetailCacheTTL, logger)
}

// provideAuthClient talks to the account API anonymously; login and signup
// never carry a token
func provideAuthClient(cfg *config.Config, metrics *telemetry.Metrics, tracer trace.Tracer, logger *logrus.Logger) *account.AuthClient {
	gw := gateway.NewClient(gateway.Options{
		Name:          "account",
		BaseURL:       cfg.AccountAPIURL,
		Timeout:       cfg.RequestTimeout,
		RatePerSecond: cfg.GatewayRatePerSecond,
		Metrics:       metrics,
		Tracer:        tracer,
	}, logger)
	return account.NewAuthClient(gw, logger)
}

func provideLibraryClient(cfg *config.Config, session *controllers.SessionStore, metrics *telemetry.Metrics, tracer trace.Tracer, logger *logrus.Logger) *account.LibraryClient {
	gw := gateway.NewClient(gateway.Options{
		Name:          "account",
		BaseURL:       cfg.AccountAPIURL,
		Timeout:       cfg.RequestTimeout,
		RatePerSecond: cfg.GatewayRatePerSecond,
		Tokens:        session,
		Metrics:       metrics,
		Tracer:        tracer,
	}, logger)
	return account.NewLibraryClient(gw, logger)
}

// provideSessionStore restores the session saved by a previous run
func provideSessionStore(auth *account.AuthClient, db *models.Database, logger *logrus.Logger) *controllers.SessionStore {
	session := controllers.NewSessionStore(auth, db, logger)
	if session.Restore() {
		logger.Debug("Session restored")
	}
	return session
}

func provideApp(ctx context.Context, cfg *config.Config, catalogClient *catalog.Client, library *account.LibraryClient, session *controllers.SessionStore, metrics *telemetry.Metrics, logger *logrus.Logger) *controllers.App {
	return controllers.NewApp(ctx, catalogClient, library, session, metrics, controllers.AppOptions{
		CompactThreshold: cfg.CompactThreshold,
		PrefetchMargin:   cfg.PrefetchMargin,
	}, logger)
}

func provideInspector(cfg *config.Config, app *controllers.App, metrics *telemetry.Metrics, logger *logrus.Logger) *api.Server {
	if cfg.InspectorAddr == "" {
		return nil
	}
	return api.NewServer(cfg.InspectorAddr, app, metrics, logger)
}
