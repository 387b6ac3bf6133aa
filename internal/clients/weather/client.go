// Package weather reads current conditions and a short forecast from a
// wttr.in compatible endpoint.
package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"homeboard/internal/errs"
	"homeboard/internal/models"
)

const (
	UnitsImperial = "imperial"
	UnitsMetric   = "metric"

	defaultUserAgent = "homeboard/1.0"
)

// Fetcher is implemented by *Client and by test fakes.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (models.Weather, error)
}

var _ Fetcher = (*Client)(nil)

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	units     string
	userAgent string
	clock     models.Clock
}

func NewClient(baseURL, units string, timeout time.Duration, clock models.Clock) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse weather url %q: invalid", baseURL)
	}
	if units != UnitsMetric {
		units = UnitsImperial
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		units:     units,
		userAgent: defaultUserAgent,
		clock:     clock,
	}, nil
}

// Fetch resolves query (city, zip, "lat,lon") and maps the j1 report onto
// the dashboard weather block. Transport and decode failures wrap errs.ErrUpstream.
func (c *Client) Fetch(ctx context.Context, query string) (models.Weather, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Weather{}, fmt.Errorf("%w: empty weather query", errs.ErrUpstream)
	}

	rel := &url.URL{Path: c.baseURL.Path + "/" + query, RawQuery: "format=j1"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.ResolveReference(rel).String(), nil)
	if err != nil {
		return models.Weather{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Weather{}, fmt.Errorf("%w: %s", errs.ErrUpstream, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return models.Weather{}, fmt.Errorf("%w: weather returned status %d", errs.ErrUpstream, resp.StatusCode)
	}

	var r report
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return models.Weather{}, fmt.Errorf("%w: decode weather: %s", errs.ErrUpstream, err.Error())
	}
	if len(r.CurrentCondition) == 0 {
		return models.Weather{}, fmt.Errorf("%w: weather report has no current conditions", errs.ErrUpstream)
	}
	return c.toWeather(query, r), nil
}

func (c *Client) toWeather(query string, r report) models.Weather {
	cur := r.CurrentCondition[0]
	unit := "°F"
	temp := cur.TempF
	if c.units == UnitsMetric {
		unit = "°C"
		temp = cur.TempC
	}

	w := models.Weather{
		Location:  r.location(query),
		Temp:      temp + unit,
		Summary:   firstValue(cur.WeatherDesc),
		Icon:      iconFor(cur.WeatherCode),
		UpdatedAt: c.clock().UTC().Format(time.RFC3339),
		Forecast:  make([]models.ForecastDay, 0, len(r.Weather)),
	}
	for i, day := range r.Weather {
		hi, lo := day.MaxTempF, day.MinTempF
		if c.units == UnitsMetric {
			hi, lo = day.MaxTempC, day.MinTempC
		}
		fd := models.ForecastDay{Date: day.Date, High: hi + unit, Low: lo + unit}
		if mid := day.midday(); mid != nil {
			fd.Summary = firstValue(mid.WeatherDesc)
			fd.Icon = iconFor(mid.WeatherCode)
		}
		if i == 0 {
			w.High, w.Low = fd.High, fd.Low
		}
		w.Forecast = append(w.Forecast, fd)
	}
	return w
}

// iconFor folds the WWO condition codes onto a small icon set.
func iconFor(code string) string {
	switch code {
	case "113":
		return "sun"
	case "116":
		return "partly-cloudy"
	case "119", "122":
		return "cloud"
	case "143", "248", "260":
		return "fog"
	case "200", "386", "389", "392", "395":
		return "storm"
	case "179", "227", "230", "323", "326", "329", "332", "335", "338", "368", "371":
		return "snow"
	case "182", "185", "281", "284", "311", "314", "317", "320", "350", "362", "365", "374", "377":
		return "sleet"
	case "":
		return ""
	default:
		return "rain"
	}
}
