//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"homeboard/internal"
	"homeboard/internal/auth"
	"homeboard/internal/clients/ics"
	"homeboard/internal/clients/weather"
	"homeboard/internal/controllers"
	"homeboard/internal/jobs"
	"homeboard/internal/providers"
	"homeboard/internal/push"
	"homeboard/internal/services"
	"homeboard/internal/storage"
	"homeboard/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		provideClock,

		storage.NewSQLiteStore,
		services.NewSettingsService,
		wire.Bind(new(services.SettingsServiceInterface), new(*services.SettingsService)),
		wire.Bind(new(services.DeviceIdentity), new(*services.SettingsService)),
		wire.Bind(new(auth.CodeSource), new(*services.SettingsService)),

		provideTokenService,
		wire.Bind(new(auth.TokenServiceInterface), new(*auth.TokenService)),
		auth.NewPairingService,
		wire.Bind(new(auth.PairingServiceInterface), new(*auth.PairingService)),
		auth.NewMiddleware,

		provideHub,
		wire.Bind(new(push.HubInterface), new(*push.Hub)),
		wire.Bind(new(services.Notifier), new(*push.Hub)),

		services.NewStateService,
		wire.Bind(new(services.StateServiceInterface), new(*services.StateService)),
		services.NewPopupService,
		wire.Bind(new(services.PopupServiceInterface), new(*services.PopupService)),

		provideICSClient,
		wire.Bind(new(ics.Fetcher), new(*ics.Client)),
		provideWeatherClient,
		wire.Bind(new(weather.Fetcher), new(*weather.Client)),
		jobs.NewZstdCompressor,
		jobs.NewFileManager,
		wire.Bind(new(controllers.Snapshotter), new(*jobs.FileManager)),
		jobs.NewCalendarJob,
		jobs.NewWeatherJob,
		jobs.NewScheduler,

		controllers.NewApiController,
		controllers.NewControlController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
