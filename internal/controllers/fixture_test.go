package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"homeboard/internal/auth"
	"homeboard/internal/models"
	"homeboard/internal/push"
	"homeboard/internal/services"
	"homeboard/internal/storage"
	"homeboard/internal/structures"
	"homeboard/internal/testutil"
)

var testNow = time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

type fakeScheduler struct {
	runs []string
	busy bool
}

func (s *fakeScheduler) Init()          {}
func (s *fakeScheduler) Stop()          {}
func (s *fakeScheduler) Restore() error { return nil }
func (s *fakeScheduler) Persist() error { return nil }
func (s *fakeScheduler) RunNow(job string) bool {
	s.runs = append(s.runs, job)
	return !s.busy
}

type fakeSnapshotter struct {
	data []byte
	err  error
}

func (f *fakeSnapshotter) Snapshot(context.Context) ([]byte, error) { return f.data, f.err }

type testEnv struct {
	conf      *structures.Config
	store     *storage.MemoryStore
	settings  *services.SettingsService
	state     *services.StateService
	popups    *services.PopupService
	hub       *push.Hub
	tokens    *auth.TokenService
	cache     *testutil.MockCache
	logger    *testutil.MockLogger
	clock     *testutil.FixedClock
	scheduler *fakeScheduler
	backup    *fakeSnapshotter
	api       *ApiController
	control   *ControlController
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		conf: &structures.Config{
			Auth: structures.AuthConfig{TokenSecret: "test-secret", TokenTTL: 30 * 24 * time.Hour},
			Push: structures.PushConfig{Heartbeat: time.Hour, BufferSize: 16},
		},
		store:     storage.NewMemoryStore(),
		cache:     testutil.NewMockCache(),
		logger:    &testutil.MockLogger{},
		clock:     testutil.NewFixedClock(testNow),
		scheduler: &fakeScheduler{},
		backup:    &fakeSnapshotter{data: []byte("zstd-bytes")},
	}
	metrics := testutil.NewMockMetrics()
	e.settings = services.NewSettingsService(e.store, e.conf, e.logger)
	e.hub = push.NewHub(e.settings, e.conf.Push.BufferSize, e.logger, metrics)
	e.state = services.NewStateService(e.store, e.hub, e.settings, e.cache, metrics, e.logger, e.clock.Clock())
	e.popups = services.NewPopupService(e.store, e.hub, e.settings, e.logger, e.clock.Clock())
	e.tokens = auth.NewTokenService([]byte(e.conf.Auth.TokenSecret), e.conf.Auth.TokenTTL, e.clock.Clock())
	pairing := auth.NewPairingService(e.settings, e.tokens)

	e.api = NewApiController(e.conf, e.logger, e.state, e.popups, e.settings, e.hub)
	e.control = NewControlController(e.logger, pairing, e.state, e.popups, e.settings, e.scheduler, e.backup, e.clock.Clock())
	t.Cleanup(e.hub.Close)
	return e
}

func (e *testEnv) seed(t *testing.T) models.SharedState {
	t.Helper()
	doc, err := e.state.Current(context.Background())
	require.NoError(t, err)
	return doc
}

func (e *testEnv) deviceID(t *testing.T) string {
	t.Helper()
	id, err := e.settings.DeviceID(context.Background())
	require.NoError(t, err)
	return id
}

func (e *testEnv) pairingCode(t *testing.T) string {
	t.Helper()
	code, err := e.settings.PairingCode(context.Background())
	require.NoError(t, err)
	return code
}

func call(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler(rr, r)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&out))
	return out
}
