package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/errs"
)

const sampleReport = `{
  "current_condition": [{"temp_F": "57", "temp_C": "14", "weatherCode": "116", "weatherDesc": [{"value": "Partly cloudy"}]}],
  "nearest_area": [{"areaName": [{"value": "Portland"}], "region": [{"value": "Oregon"}]}],
  "weather": [
    {"date": "2026-04-10", "maxtempF": "61", "mintempF": "45", "maxtempC": "16", "mintempC": "7",
     "hourly": [{"time": "0", "weatherCode": "113", "weatherDesc": [{"value": "Clear"}]},
                {"time": "1200", "weatherCode": "296", "weatherDesc": [{"value": "Light rain"}]}]},
    {"date": "2026-04-11", "maxtempF": "64", "mintempF": "48", "maxtempC": "18", "mintempC": "9", "hourly": []}
  ]
}`

var fetchedAt = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, status int, body string, gotPath *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotPath != nil {
			*gotPath = r.URL.Path + "?" + r.URL.RawQuery
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchImperial(t *testing.T) {
	var path string
	srv := newTestServer(t, http.StatusOK, sampleReport, &path)
	c, err := NewClient(srv.URL, UnitsImperial, time.Second, func() time.Time { return fetchedAt })
	require.NoError(t, err)

	w, err := c.Fetch(context.Background(), "Portland")
	require.NoError(t, err)

	assert.Equal(t, "/Portland?format=j1", path)
	assert.Equal(t, "Portland, Oregon", w.Location)
	assert.Equal(t, "57°F", w.Temp)
	assert.Equal(t, "Partly cloudy", w.Summary)
	assert.Equal(t, "partly-cloudy", w.Icon)
	assert.Equal(t, "61°F", w.High)
	assert.Equal(t, "45°F", w.Low)
	assert.Equal(t, "2026-04-10T09:00:00Z", w.UpdatedAt)
	require.Len(t, w.Forecast, 2)
	assert.Equal(t, "Light rain", w.Forecast[0].Summary)
	assert.Equal(t, "rain", w.Forecast[0].Icon)
	assert.Empty(t, w.Forecast[1].Summary)
}

func TestClient_FetchMetric(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleReport, nil)
	c, err := NewClient(srv.URL, UnitsMetric, time.Second, func() time.Time { return fetchedAt })
	require.NoError(t, err)

	w, err := c.Fetch(context.Background(), "Portland")
	require.NoError(t, err)
	assert.Equal(t, "14°C", w.Temp)
	assert.Equal(t, "18°C", w.Forecast[1].High)
}

func TestClient_UpstreamFailures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error":  {http.StatusInternalServerError, "oops"},
		"not json":      {http.StatusOK, "<html>"},
		"no conditions": {http.StatusOK, `{"current_condition": []}`},
	}
	for name, tc := range cases {
		srv := newTestServer(t, tc.status, tc.body, nil)
		c, err := NewClient(srv.URL, UnitsImperial, time.Second, time.Now)
		require.NoError(t, err)

		_, err = c.Fetch(context.Background(), "Portland")
		assert.ErrorIs(t, err, errs.ErrUpstream, name)
	}
}

func TestClient_EmptyQuery(t *testing.T) {
	c, err := NewClient("https://wttr.in", UnitsImperial, time.Second, time.Now)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, errs.ErrUpstream)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("not a url", UnitsImperial, time.Second, time.Now)
	assert.Error(t, err)
}
