package jobs

import (
	"context"

	"homeboard/internal/clients/weather"
	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/services"
)

type WeatherJob struct {
	settings services.SettingsServiceInterface
	state    services.StateServiceInterface
	source   weather.Fetcher
	logger   providers.Logger
}

func NewWeatherJob(settings services.SettingsServiceInterface, state services.StateServiceInterface, source weather.Fetcher, logger providers.Logger) *WeatherJob {
	return &WeatherJob{settings: settings, state: state, source: source, logger: logger}
}

func (j *WeatherJob) Run(ctx context.Context) error {
	query, err := j.settings.Get(ctx, models.SettingWeatherQuery)
	if err != nil {
		return err
	}
	if query == "" {
		j.logger.Debugf(providers.TypeSync, "Weather sync skipped: no location configured")
		return nil
	}

	w, err := j.source.Fetch(ctx, query)
	if err != nil {
		return err
	}

	_, err = j.state.Mutate(ctx, func(models.SharedState) (models.StatePatch, error) {
		return models.StatePatch{Weather: weatherPatch(w)}, nil
	})
	if err != nil {
		return err
	}
	j.logger.Infof(providers.TypeSync, "Weather synced for %q: %s %s", w.Location, w.Temp, w.Summary)
	return nil
}

// weatherPatch sets every weather field so a sync fully replaces the block.
func weatherPatch(w models.Weather) *models.WeatherPatch {
	forecast := w.Forecast
	if forecast == nil {
		forecast = []models.ForecastDay{}
	}
	return &models.WeatherPatch{
		Location:  &w.Location,
		Temp:      &w.Temp,
		Summary:   &w.Summary,
		Icon:      &w.Icon,
		High:      &w.High,
		Low:       &w.Low,
		UpdatedAt: &w.UpdatedAt,
		Forecast:  forecast,
	}
}
