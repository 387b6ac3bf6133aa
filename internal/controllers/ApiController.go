package controllers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"homeboard/internal/models"
	"homeboard/internal/providers"
	"homeboard/internal/push"
	"homeboard/internal/services"
	"homeboard/internal/structures"
)

// ApiController serves the unauthenticated display endpoints.
type ApiController struct {
	logger    providers.Logger
	state     services.StateServiceInterface
	popups    services.PopupServiceInterface
	identity  services.DeviceIdentity
	hub       push.HubInterface
	heartbeat time.Duration
}

func NewApiController(
	conf *structures.Config,
	logger providers.Logger,
	state services.StateServiceInterface,
	popups services.PopupServiceInterface,
	identity services.DeviceIdentity,
	hub push.HubInterface,
) *ApiController {
	return &ApiController{
		logger:    logger,
		state:     state,
		popups:    popups,
		identity:  identity,
		hub:       hub,
		heartbeat: conf.Push.Heartbeat,
	}
}

// GetState returns the shared document, seeding defaults on first read.
func (ac *ApiController) GetState(w http.ResponseWriter, r *http.Request) {
	gson, err := ac.state.Encoded(r.Context(), func(doc models.SharedState) ([]byte, error) {
		deviceID, err := ac.identity.DeviceID(r.Context())
		if err != nil {
			return nil, err
		}
		return json.Marshal(models.StateResponse{State: doc, DeviceID: deviceID})
	})
	if err != nil {
		writeError(w, ac.logger, r, err)
		return
	}
	writeRaw(w, http.StatusOK, gson)
}

func (ac *ApiController) GetPopups(w http.ResponseWriter, r *http.Request) {
	popups, err := ac.popups.Active(r.Context())
	if err != nil {
		writeError(w, ac.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PopupsResponse{Popups: popups})
}

type connectedEvent struct {
	DeviceID string `json:"deviceId"`
}

// Events streams push updates for one device identity as server-sent events.
func (ac *ApiController) Events(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]
	ctx := r.Context()

	sub, err := ac.hub.Subscribe(ctx, deviceID)
	if err != nil {
		writeError(w, ac.logger, r, err)
		return
	}
	defer sub.Close()

	doc, err := ac.state.Current(ctx)
	if err != nil {
		writeError(w, ac.logger, r, err)
		return
	}
	initial, err := json.Marshal(doc)
	if err != nil {
		writeError(w, ac.logger, r, err)
		return
	}
	hello, err := json.Marshal(connectedEvent{DeviceID: deviceID})
	if err != nil {
		writeError(w, ac.logger, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	// the stream outlives the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, push.EventConnected, hello); err != nil {
		return
	}
	if err := writeEvent(w, push.EventState, initial); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}
	ac.logger.Infof(providers.TypePush, "display %s connected from %s", deviceID, r.RemoteAddr)

	ticker := time.NewTicker(ac.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ac.logger.Debugf(providers.TypePush, "display %s disconnected", deviceID)
			return
		case ev, ok := <-sub.Events():
			if !ok {
				ac.logger.Debugf(providers.TypePush, "stream for %s ended by hub", deviceID)
				return
			}
			if err := writeEvent(w, ev.Name, ev.Data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ":heartbeat\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w io.Writer, name string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
