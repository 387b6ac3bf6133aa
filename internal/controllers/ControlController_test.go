package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/jobs"
	"homeboard/internal/models"
)

func TestPair(t *testing.T) {
	e := newTestEnv(t)
	code := e.pairingCode(t)

	rr := call(e.control.Pair, http.MethodPost, "/api/control/pair", `{"code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[models.TokenResponse](t, rr)
	assert.NoError(t, e.tokens.Verify(resp.Token))
}

func TestPair_Rejections(t *testing.T) {
	e := newTestEnv(t)
	code := e.pairingCode(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"wrong code", `{"code":"NOPE00"}`, http.StatusUnauthorized},
		{"empty code", `{"code":""}`, http.StatusBadRequest},
		{"malformed json", `{"code":`, http.StatusBadRequest},
		{"unknown field", `{"code":"X","admin":true}`, http.StatusBadRequest},
		{"trailing garbage", `{"code":"` + code + `"}garbage`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := call(e.control.Pair, http.MethodPost, "/api/control/pair", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rr).Error)
		})
	}
}

func TestSession(t *testing.T) {
	e := newTestEnv(t)

	rr := call(e.control.Session, http.MethodGet, "/api/control/session", "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[models.SessionResponse](t, rr)
	assert.True(t, resp.OK)
	assert.Equal(t, e.deviceID(t), resp.DeviceID)
}

func TestUpdateState_MergesPatch(t *testing.T) {
	e := newTestEnv(t)
	before := e.seed(t)

	rr := call(e.control.UpdateState, http.MethodPost, "/api/control/state",
		`{"state":{"note":"Dinner at 6","weather":{"temp":"61°F"}}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	doc := decode[models.SharedState](t, rr)
	assert.Equal(t, "Dinner at 6", doc.Note)
	assert.Equal(t, "61°F", doc.Weather.Temp)
	assert.Equal(t, before.Modules, doc.Modules)
	assert.True(t, doc.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateState_Rejections(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing state", `{}`},
		{"unknown top-level field", `{"state":{"wallpaper":"red"}}`},
		{"unknown module", `{"state":{"modules":{"radio":true}}}`},
		{"bad theme", `{"state":{"theme":"neon"}}`},
		{"oversized body", `{"state":{"note":"` + strings.Repeat("x", maxRequestBodySize) + `"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := call(e.control.UpdateState, http.MethodPost, "/api/control/state", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestUpdateState_NoDocument(t *testing.T) {
	e := newTestEnv(t)

	rr := call(e.control.UpdateState, http.MethodPost, "/api/control/state", `{"state":{"note":"x"}}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal error", decode[errorResponse](t, rr).Error)
	assert.True(t, e.logger.Has("error", "state document missing"))
}

func TestToggleModule(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t)

	rr := call(e.control.ToggleModule, http.MethodPost, "/api/control/modules/toggle", `{"module":"photos","enabled":false}`)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := decode[models.SharedState](t, rr)
	assert.False(t, doc.Modules[models.ModulePhotos])

	rr = call(e.control.ToggleModule, http.MethodPost, "/api/control/modules/toggle", `{"module":"radio","enabled":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(e.control.ToggleModule, http.MethodPost, "/api/control/modules/toggle", `{"module":"photos"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateLayout_KeepsSiblings(t *testing.T) {
	e := newTestEnv(t)
	before := e.seed(t)

	rr := call(e.control.UpdateLayout, http.MethodPost, "/api/control/layout", `{"layout":{"modules":{"note":{"span":2}}}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := decode[models.SharedState](t, rr)

	assert.Equal(t, 2, doc.Layout.Modules[models.ModuleNote].Span)
	assert.Equal(t, before.Layout.Modules[models.ModuleNote].Column, doc.Layout.Modules[models.ModuleNote].Column)
	assert.Equal(t, before.Layout.Modules[models.ModuleClock], doc.Layout.Modules[models.ModuleClock])
	assert.Equal(t, before.Layout.Columns, doc.Layout.Columns)
}

func TestSetCalendarSource_TriggersSync(t *testing.T) {
	e := newTestEnv(t)

	rr := call(e.control.SetCalendarSource, http.MethodPost, "/api/control/calendar/ics", `{"url":"https://example.com/family.ics"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	settings := decode[models.IntegrationSettings](t, rr)
	assert.Equal(t, "https://example.com/family.ics", settings.CalendarICSURL)
	assert.Equal(t, []string{jobs.JobCalendar}, e.scheduler.runs)

	rr = call(e.control.SetCalendarSource, http.MethodPost, "/api/control/calendar/ics", `{"url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, e.scheduler.runs, 1)
}

func TestSetWeatherLocation_TriggersSync(t *testing.T) {
	e := newTestEnv(t)
	e.scheduler.busy = true

	rr := call(e.control.SetWeatherLocation, http.MethodPost, "/api/control/weather/location", `{"query":"Portland"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(e.control.Settings, http.MethodGet, "/api/control/settings", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Portland", decode[models.IntegrationSettings](t, rr).WeatherQuery)
	assert.Equal(t, []string{jobs.JobWeather}, e.scheduler.runs)
	assert.True(t, e.logger.Has("info", "already running"))
}

func TestPopupLifecycle(t *testing.T) {
	e := newTestEnv(t)

	rr := call(e.control.CreatePopup, http.MethodPost, "/api/control/popups",
		`{"message":"Dinner is ready","priority":"success","mode":"manual"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	created := decode[models.Popup](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Visible)
	assert.Nil(t, created.ExpiresAt)

	req := httptest.NewRequest(http.MethodPost, "/api/control/popups/"+created.ID, strings.NewReader(`{"message":"Dinner is cold"}`))
	req = mux.SetURLVars(req, map[string]string{"id": created.ID})
	rr = httptest.NewRecorder()
	e.control.UpdatePopup(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[models.Popup](t, rr)
	assert.Equal(t, "Dinner is cold", updated.Message)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	rr = call(e.control.ClearPopups, http.MethodPost, "/api/control/popups/clear", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	active := decode[models.PopupsResponse](t, call(e.api.GetPopups, http.MethodGet, "/api/popups", ""))
	assert.Empty(t, active.Popups)

	history := decode[models.PopupsResponse](t, call(e.control.PopupHistory, http.MethodGet, "/api/control/popups", ""))
	require.Len(t, history.Popups, 1)
	assert.False(t, history.Popups[0].Visible)
}

func TestCreatePopup_Rejections(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"priority":"warning"}`},
		{"bad position", `{"message":"x","position":"upside-down"}`},
		{"bad priority", `{"message":"x","priority":"loud"}`},
		{"negative duration", `{"message":"x","durationSeconds":-5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := call(e.control.CreatePopup, http.MethodPost, "/api/control/popups", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestUpdatePopup_Unknown(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/control/popups/missing", strings.NewReader(`{"message":"x"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()
	e.control.UpdatePopup(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not found", decode[errorResponse](t, rr).Error)
}

func TestBackup_Download(t *testing.T) {
	e := newTestEnv(t)

	rr := call(e.control.Backup, http.MethodGet, "/api/control/backup", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/zstd", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="homeboard-20260502T080000Z.json.zst"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "zstd-bytes", rr.Body.String())
}

func TestBackup_Error(t *testing.T) {
	e := newTestEnv(t)
	e.backup.err = errors.New("disk gone")

	rr := call(e.control.Backup, http.MethodGet, "/api/control/backup", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.True(t, e.logger.Has("error", "disk gone"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.Canceled))
}
