//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"scoutd/internal"
	"scoutd/internal/controllers"
	"scoutd/internal/providers"
	"scoutd/internal/services"
	"scoutd/internal/snapshot"
	"scoutd/internal/structures"
)

var baseSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.ProvideLogger,
	providers.NewMetricsProvider,
	providers.NewStoreProvider,

	snapshot.NewZstdCompressor,
	snapshot.NewFileManager,
	snapshot.NewScheduler,
	services.NewAggregationService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		baseSet,
		providers.NewInstrumentedCacheProvider,

		services.NewSubmissionService,
		services.NewClaimService,
		controllers.NewMatchScoutController,
		controllers.NewPitScoutController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitExporter(cfg *structures.CliFlags) (*internal.Exporter, func(), error) {

	wire.Build(
		baseSet,
		internal.NewExporter,
	)

	return nil, nil, nil
}
