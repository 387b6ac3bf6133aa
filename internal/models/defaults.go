package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

const (
	DefaultTheme          = "auto"
	DefaultLayoutColumns  = 3
	DefaultPhotoInterval  = 30
	DefaultPhotoFit       = "cover"
	DefaultOffFrom        = "23:00"
	DefaultOffTo          = "06:00"
	DefaultLayoutHeight   = "auto"
	defaultModuleDisabled = ModuleNote
)

var defaultCustomTheme = CustomTheme{
	Background: "#101418",
	Surface:    "#1b222a",
	Text:       "#f2f4f7",
	Accent:     "#4fb3ff",
	Muted:      "#8a94a3",
}

var defaultModuleLayouts = map[string]ModuleLayout{
	ModuleClock:    {Column: 1, Span: 1, Order: 1, Height: DefaultLayoutHeight},
	ModuleCalendar: {Column: 1, Span: 1, Order: 2, Height: DefaultLayoutHeight},
	ModuleWeather:  {Column: 2, Span: 1, Order: 1, Height: DefaultLayoutHeight},
	ModulePhotos:   {Column: 2, Span: 2, Order: 2, Height: DefaultLayoutHeight},
	ModuleNote:     {Column: 3, Span: 1, Order: 1, Height: DefaultLayoutHeight},
	ModulePopups:   {Column: 1, Span: 3, Order: 99, Height: DefaultLayoutHeight},
}

// DefaultState returns a freshly generated complete document.
func DefaultState(now time.Time) SharedState {
	modules := make(map[string]bool, len(KnownModules))
	for _, m := range KnownModules {
		modules[m] = m != defaultModuleDisabled
	}
	layouts := make(map[string]ModuleLayout, len(defaultModuleLayouts))
	for k, v := range defaultModuleLayouts {
		layouts[k] = v
	}

	return SharedState{
		Modules: modules,
		Events:  []CalendarEvent{},
		Weather: Weather{Forecast: []ForecastDay{}},
		PhotoSources: PhotoSources{
			Local:           []string{},
			Remote:          []string{},
			Albums:          []string{},
			IntervalSeconds: DefaultPhotoInterval,
			Fit:             DefaultPhotoFit,
		},
		Theme:       DefaultTheme,
		CustomTheme: defaultCustomTheme,
		Layout: Layout{
			Columns: DefaultLayoutColumns,
			Modules: layouts,
		},
		OffSchedule: OffSchedule{From: DefaultOffFrom, To: DefaultOffTo},
		UpdatedAt:   now.UTC(),
	}
}

// EnsureDefaults backfills every field missing from a stored document with
// its default value. Present values always win, unknown map keys are kept.
// The input is never modified and the result is a fixed point.
func EnsureDefaults(doc SharedState) SharedState {
	out := doc.Clone()
	def := DefaultState(doc.UpdatedAt)

	if out.Modules == nil {
		out.Modules = make(map[string]bool, len(def.Modules))
	}
	for k, v := range def.Modules {
		if _, ok := out.Modules[k]; !ok {
			out.Modules[k] = v
		}
	}

	if out.Events == nil {
		out.Events = []CalendarEvent{}
	}
	for i := range out.Events {
		if out.Events[i].Source == "" {
			out.Events[i].Source = EventSourceManual
		}
	}

	if out.Weather.Forecast == nil {
		out.Weather.Forecast = []ForecastDay{}
	}

	ps := &out.PhotoSources
	if ps.Local == nil {
		ps.Local = []string{}
	}
	if ps.Remote == nil {
		ps.Remote = []string{}
	}
	if ps.Albums == nil {
		ps.Albums = []string{}
	}
	if ps.IntervalSeconds <= 0 {
		ps.IntervalSeconds = def.PhotoSources.IntervalSeconds
	}
	if ps.Fit == "" {
		ps.Fit = def.PhotoSources.Fit
	}

	if out.Theme == "" {
		out.Theme = def.Theme
	}
	out.CustomTheme = overlayTheme(out.CustomTheme, def.CustomTheme)

	if out.Layout.Columns <= 0 {
		out.Layout.Columns = def.Layout.Columns
	}
	if out.Layout.Modules == nil {
		out.Layout.Modules = make(map[string]ModuleLayout, len(def.Layout.Modules))
	}
	for name, d := range def.Layout.Modules {
		cur, ok := out.Layout.Modules[name]
		if !ok {
			out.Layout.Modules[name] = d
			continue
		}
		out.Layout.Modules[name] = overlayModuleLayout(cur, d)
	}

	if out.OffSchedule.From == "" {
		out.OffSchedule.From = def.OffSchedule.From
	}
	if out.OffSchedule.To == "" {
		out.OffSchedule.To = def.OffSchedule.To
	}

	return out
}

func overlayTheme(cur, def CustomTheme) CustomTheme {
	if cur.Background == "" {
		cur.Background = def.Background
	}
	if cur.Surface == "" {
		cur.Surface = def.Surface
	}
	if cur.Text == "" {
		cur.Text = def.Text
	}
	if cur.Accent == "" {
		cur.Accent = def.Accent
	}
	if cur.Muted == "" {
		cur.Muted = def.Muted
	}
	return cur
}

func overlayModuleLayout(cur, def ModuleLayout) ModuleLayout {
	if cur.Column <= 0 {
		cur.Column = def.Column
	}
	if cur.Span <= 0 {
		cur.Span = def.Span
	}
	if cur.Order <= 0 {
		cur.Order = def.Order
	}
	if cur.Height == "" {
		cur.Height = def.Height
	}
	return cur
}

// DecodeState parses a stored document written by any earlier schema and
// reconciles it against the current defaults.
func DecodeState(raw []byte) (SharedState, error) {
	var doc SharedState
	if err := json.Unmarshal(raw, &doc); err != nil {
		return SharedState{}, fmt.Errorf("decode state: %w", err)
	}
	return EnsureDefaults(doc), nil
}
