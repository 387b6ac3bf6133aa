package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"homeboard/internal/auth"
	"homeboard/internal/jobs"
	"homeboard/internal/jobs/interfaces"
	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/services"
)

// Snapshotter produces the compressed backup served by the export endpoint.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]byte, error)
}

// ControlController serves the paired control client. Every route except
// Pair sits behind the bearer token middleware.
type ControlController struct {
	logger    providers.Logger
	pairing   auth.PairingServiceInterface
	state     services.StateServiceInterface
	popups    services.PopupServiceInterface
	settings  services.SettingsServiceInterface
	scheduler interfaces.SchedulerInterface
	backup    Snapshotter
	clock     models.Clock
}

func NewControlController(
	logger providers.Logger,
	pairing auth.PairingServiceInterface,
	state services.StateServiceInterface,
	popups services.PopupServiceInterface,
	settings services.SettingsServiceInterface,
	scheduler interfaces.SchedulerInterface,
	backup Snapshotter,
	clock models.Clock,
) *ControlController {
	return &ControlController{
		logger:    logger,
		pairing:   pairing,
		state:     state,
		popups:    popups,
		settings:  settings,
		scheduler: scheduler,
		backup:    backup,
		clock:     clock,
	}
}

func (cc *ControlController) Pair(w http.ResponseWriter, r *http.Request) {
	var req models.PairRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	token, err := cc.pairing.Pair(r.Context(), req.Code)
	if err != nil {
		cc.logger.Warnf(providers.TypePost, "pairing rejected from %s", r.RemoteAddr)
		writeError(w, cc.logger, r, err)
		return
	}
	cc.logger.Infof(providers.TypePost, "control client paired from %s", r.RemoteAddr)
	writeJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}

func (cc *ControlController) Session(w http.ResponseWriter, r *http.Request) {
	deviceID, err := cc.settings.DeviceID(r.Context())
	if err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SessionResponse{OK: true, DeviceID: deviceID})
}

func (cc *ControlController) UpdateState(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	cc.respondState(w, r)(cc.state.Update(r.Context(), *req.State))
}

func (cc *ControlController) ToggleModule(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleModuleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	cc.respondState(w, r)(cc.state.ToggleModule(r.Context(), req.Module, *req.Enabled))
}

func (cc *ControlController) UpdateLayout(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateLayoutRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	cc.respondState(w, r)(cc.state.UpdateLayout(r.Context(), *req.Layout))
}

func (cc *ControlController) respondState(w http.ResponseWriter, r *http.Request) func(models.SharedState, error) {
	return func(doc models.SharedState, err error) {
		if err != nil {
			writeError(w, cc.logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func (cc *ControlController) Settings(w http.ResponseWriter, r *http.Request) {
	settings, err := cc.settings.Integrations(r.Context())
	if err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (cc *ControlController) SetCalendarSource(w http.ResponseWriter, r *http.Request) {
	var req models.CalendarSourceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	if err := cc.settings.SetCalendarURL(r.Context(), req.URL); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	cc.triggerSync(jobs.JobCalendar)
	cc.Settings(w, r)
}

func (cc *ControlController) SetWeatherLocation(w http.ResponseWriter, r *http.Request) {
	var req models.WeatherLocationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	if err := cc.settings.SetWeatherQuery(r.Context(), req.Query); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	cc.triggerSync(jobs.JobWeather)
	cc.Settings(w, r)
}

func (cc *ControlController) triggerSync(job string) {
	if !cc.scheduler.RunNow(job) {
		cc.logger.Infof(providers.TypeSync, "%s sync already running, new source applies on next run", job)
	}
}

func (cc *ControlController) CreatePopup(w http.ResponseWriter, r *http.Request) {
	var in models.PopupInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	p, err := cc.popups.Create(r.Context(), in)
	if err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (cc *ControlController) UpdatePopup(w http.ResponseWriter, r *http.Request) {
	var in models.PopupInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	p, err := cc.popups.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (cc *ControlController) ClearPopups(w http.ResponseWriter, r *http.Request) {
	if err := cc.popups.ClearAll(r.Context()); err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// PopupHistory lists every popup ever created, hidden and expired included.
func (cc *ControlController) PopupHistory(w http.ResponseWriter, r *http.Request) {
	popups, err := cc.popups.History(r.Context())
	if err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PopupsResponse{Popups: popups})
}

// Backup downloads the current document as a zstd-compressed JSON backup.
func (cc *ControlController) Backup(w http.ResponseWriter, r *http.Request) {
	data, err := cc.backup.Snapshot(r.Context())
	if err != nil {
		writeError(w, cc.logger, r, err)
		return
	}
	name := fmt.Sprintf("homeboard-%s.json.zst", cc.clock().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
