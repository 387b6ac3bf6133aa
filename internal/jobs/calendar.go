package jobs

import (
	"context"

	"homeboard/internal/clients/ics"
	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/services"
)

// CalendarJob replaces the imported events in the shared document with the
// current contents of the configured ICS feed. Manual events are kept.
type CalendarJob struct {
	settings services.SettingsServiceInterface
	state    services.StateServiceInterface
	feed     ics.Fetcher
	logger   providers.Logger
}

func NewCalendarJob(settings services.SettingsServiceInterface, state services.StateServiceInterface, feed ics.Fetcher, logger providers.Logger) *CalendarJob {
	return &CalendarJob{settings: settings, state: state, feed: feed, logger: logger}
}

func (j *CalendarJob) Run(ctx context.Context) error {
	url, err := j.settings.Get(ctx, models.SettingCalendarICSURL)
	if err != nil {
		return err
	}
	if url == "" {
		j.logger.Debugf(providers.TypeSync, "Calendar sync skipped: no feed configured")
		return nil
	}

	imported, err := j.feed.Fetch(ctx, url)
	if err != nil {
		return err
	}

	_, err = j.state.Mutate(ctx, func(current models.SharedState) (models.StatePatch, error) {
		return models.StatePatch{Events: replaceImported(current.Events, imported)}, nil
	})
	if err != nil {
		return err
	}
	j.logger.Infof(providers.TypeSync, "Calendar synced: %d feed events", len(imported))
	return nil
}

// replaceImported keeps every non-feed event of current, in order, followed by imported.
func replaceImported(current, imported []models.CalendarEvent) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(current)+len(imported))
	for _, ev := range current {
		if ev.Source != models.EventSourceICS {
			out = append(out, ev)
		}
	}
	return append(out, imported...)
}
