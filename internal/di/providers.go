package di

import (
	"context"

	"homeboard/internal/auth"
	"homeboard/internal/clients/ics"
	"homeboard/internal/clients/weather"
	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/push"
	"homeboard/internal/services"
	"homeboard/internal/structures"
)

func provideClock() models.Clock {
	return models.SystemClock()
}

// provideTokenService signs with the configured secret, or the generated one
// stored in settings.
func provideTokenService(conf *structures.Config, settings *services.SettingsService, clock models.Clock) (*auth.TokenService, error) {
	secret, err := settings.TokenSecret(context.Background())
	if err != nil {
		return nil, err
	}
	return auth.NewTokenService(secret, conf.Auth.TokenTTL, clock), nil
}

func provideHub(conf *structures.Config, settings *services.SettingsService, logger providers.Logger, metrics providers.MetricsProviderInterface) *push.Hub {
	return push.NewHub(settings, conf.Push.BufferSize, logger, metrics)
}

func provideICSClient(conf *structures.Config, clock models.Clock) *ics.Client {
	return ics.NewClient(conf.Sync.FetchTimeout, clock)
}

func provideWeatherClient(conf *structures.Config, clock models.Clock) (*weather.Client, error) {
	return weather.NewClient(conf.Sync.WeatherURL, conf.Sync.Units, conf.Sync.FetchTimeout, clock)
}
