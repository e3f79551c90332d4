//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/config"
	"github.com/amaumene/unig/internal/telemetry"
)

var clientSet = wire.NewSet(
	provideDatabase,
	provideRegistry,
	telemetry.NewMetrics,
	provideTracerProvider,
	provideTracer,
	provideCatalogClient,
	provideAuthClient,
	provideLibraryClient,
	provideSessionStore,
	provideApp,
	provideInspector,
	wire.Struct(new(client), "*"),
)

func initializeClient(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*client, func(), error) {
	wire.Build(clientSet)
	return nil, nil, nil
}
