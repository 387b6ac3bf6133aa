package models

import "time"

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

func SystemClock() Clock {
	return time.Now
}

const (
	ModuleCalendar = "calendar"
	ModuleWeather  = "weather"
	ModulePhotos   = "photos"
	ModuleNote     = "note"
	ModuleClock    = "clock"
	ModulePopups   = "popups"
)

// KnownModules lists every dashboard module in default display order.
var KnownModules = []string{ModuleClock, ModuleCalendar, ModuleWeather, ModulePhotos, ModuleNote, ModulePopups}

func IsKnownModule(name string) bool {
	for _, m := range KnownModules {
		if m == name {
			return true
		}
	}
	return false
}

const (
	EventSourceManual = "manual"
	EventSourceICS    = "ics"
)

type CalendarEvent struct {
	ID     string `json:"id" validate:"required,max=256"`
	Title  string `json:"title" validate:"required,max=512"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	AllDay bool   `json:"allDay"`
	Source string `json:"source" validate:"omitempty,oneof=manual ics"`
}

type ForecastDay struct {
	Date    string `json:"date"`
	High    string `json:"high"`
	Low     string `json:"low"`
	Summary string `json:"summary"`
	Icon    string `json:"icon"`
}

type Weather struct {
	Location  string        `json:"location"`
	Temp      string        `json:"temp"`
	Summary   string        `json:"summary"`
	Icon      string        `json:"icon"`
	High      string        `json:"high"`
	Low       string        `json:"low"`
	UpdatedAt string        `json:"updatedAt"`
	Forecast  []ForecastDay `json:"forecast"`
}

type PhotoSources struct {
	Local           []string `json:"local"`
	Remote          []string `json:"remote"`
	Albums          []string `json:"albums"`
	IntervalSeconds int      `json:"intervalSeconds"`
	Fit             string   `json:"fit"`
}

type CustomTheme struct {
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
	Muted      string `json:"muted"`
}

// ModuleLayout places one module on the grid. Column, Span and Order are 1-based.
type ModuleLayout struct {
	Column int    `json:"column"`
	Span   int    `json:"span"`
	Order  int    `json:"order"`
	Height string `json:"height"`
}

type Layout struct {
	Columns int                     `json:"columns"`
	Modules map[string]ModuleLayout `json:"modules"`
}

// OffSchedule blanks the display between From and To (local "HH:MM").
type OffSchedule struct {
	Enabled bool   `json:"enabled"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// SharedState is the singleton document every display renders.
type SharedState struct {
	Modules      map[string]bool `json:"modules"`
	Note         string          `json:"note"`
	Events       []CalendarEvent `json:"events"`
	Weather      Weather         `json:"weather"`
	PhotoSources PhotoSources    `json:"photoSources"`
	Theme        string          `json:"theme"`
	CustomTheme  CustomTheme     `json:"customTheme"`
	Layout       Layout          `json:"layout"`
	OffSchedule  OffSchedule     `json:"offSchedule"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy; no map or slice is shared with s.
func (s SharedState) Clone() SharedState {
	out := s

	if s.Modules != nil {
		out.Modules = make(map[string]bool, len(s.Modules))
		for k, v := range s.Modules {
			out.Modules[k] = v
		}
	}
	out.Events = cloneSlice(s.Events)
	out.Weather.Forecast = cloneSlice(s.Weather.Forecast)
	out.PhotoSources.Local = cloneSlice(s.PhotoSources.Local)
	out.PhotoSources.Remote = cloneSlice(s.PhotoSources.Remote)
	out.PhotoSources.Albums = cloneSlice(s.PhotoSources.Albums)

	if s.Layout.Modules != nil {
		out.Layout.Modules = make(map[string]ModuleLayout, len(s.Layout.Modules))
		for k, v := range s.Layout.Modules {
			out.Layout.Modules[k] = v
		}
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// StateResponse is the public read payload for displays.
type StateResponse struct {
	State    SharedState `json:"state"`
	DeviceID string      `json:"deviceId"`
}
