package models

import (
	"errors"
	"io"
	"time"

	json "github.com/goccy/go-json"
)

// StatePatch is a sparse update of SharedState. Nil fields are left alone.
type StatePatch struct {
	Modules      map[string]bool    `json:"modules,omitempty" validate:"omitempty,dive,keys,oneof=clock calendar weather photos note popups,endkeys"`
	Note         *string            `json:"note,omitempty" validate:"omitempty,max=4000"`
	Events       []CalendarEvent    `json:"events,omitempty" validate:"omitempty,max=2000,dive"`
	Weather      *WeatherPatch      `json:"weather,omitempty"`
	PhotoSources *PhotoSourcesPatch `json:"photoSources,omitempty"`
	Theme        *string            `json:"theme,omitempty" validate:"omitempty,oneof=light dark custom auto"`
	CustomTheme  *CustomThemePatch  `json:"customTheme,omitempty"`
	Layout       *LayoutPatch       `json:"layout,omitempty"`
	OffSchedule  *OffSchedulePatch  `json:"offSchedule,omitempty"`
	// UpdatedAt is accepted so clients may echo a full document back; the
	// server always stamps its own value.
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type WeatherPatch struct {
	Location  *string       `json:"location,omitempty" validate:"omitempty,max=256"`
	Temp      *string       `json:"temp,omitempty" validate:"omitempty,max=64"`
	Summary   *string       `json:"summary,omitempty" validate:"omitempty,max=256"`
	Icon      *string       `json:"icon,omitempty" validate:"omitempty,max=64"`
	High      *string       `json:"high,omitempty" validate:"omitempty,max=64"`
	Low       *string       `json:"low,omitempty" validate:"omitempty,max=64"`
	UpdatedAt *string       `json:"updatedAt,omitempty" validate:"omitempty,max=64"`
	Forecast  []ForecastDay `json:"forecast,omitempty" validate:"omitempty,max=31"`
}

type PhotoSourcesPatch struct {
	Local           []string `json:"local,omitempty" validate:"omitempty,max=500,dive,max=2048"`
	Remote          []string `json:"remote,omitempty" validate:"omitempty,max=500,dive,url"`
	Albums          []string `json:"albums,omitempty" validate:"omitempty,max=100,dive,max=256"`
	IntervalSeconds *int     `json:"intervalSeconds,omitempty" validate:"omitempty,min=5,max=86400"`
	Fit             *string  `json:"fit,omitempty" validate:"omitempty,oneof=cover contain"`
}

type CustomThemePatch struct {
	Background *string `json:"background,omitempty" validate:"omitempty,hexcolor"`
	Surface    *string `json:"surface,omitempty" validate:"omitempty,hexcolor"`
	Text       *string `json:"text,omitempty" validate:"omitempty,hexcolor"`
	Accent     *string `json:"accent,omitempty" validate:"omitempty,hexcolor"`
	Muted      *string `json:"muted,omitempty" validate:"omitempty,hexcolor"`
}

type LayoutPatch struct {
	Columns *int                         `json:"columns,omitempty" validate:"omitempty,min=1,max=6"`
	Modules map[string]ModuleLayoutPatch `json:"modules,omitempty" validate:"omitempty,dive,keys,oneof=clock calendar weather photos note popups,endkeys"`
}

type ModuleLayoutPatch struct {
	Column *int    `json:"column,omitempty" validate:"omitempty,min=1,max=6"`
	Span   *int    `json:"span,omitempty" validate:"omitempty,min=1,max=6"`
	Order  *int    `json:"order,omitempty" validate:"omitempty,min=1,max=100"`
	Height *string `json:"height,omitempty" validate:"omitempty,max=32"`
}

type OffSchedulePatch struct {
	Enabled *bool   `json:"enabled,omitempty"`
	From    *string `json:"from,omitempty" validate:"omitempty,datetime=15:04"`
	To      *string `json:"to,omitempty" validate:"omitempty,datetime=15:04"`
}

// UpdateStateRequest is the body of POST /api/control/state.
type UpdateStateRequest struct {
	State *StatePatch `json:"state" validate:"required"`
}

// ToggleModuleRequest is the body of POST /api/control/modules/toggle.
type ToggleModuleRequest struct {
	Module  string `json:"module" validate:"required,oneof=clock calendar weather photos note popups"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

// UpdateLayoutRequest is the body of POST /api/control/layout.
type UpdateLayoutRequest struct {
	Layout *LayoutPatch `json:"layout" validate:"required"`
}

// DecodeStrict decodes exactly one JSON value into dst, rejecting unknown
// fields at any depth and anything but whitespace after the value, then
// validates it.
func DecodeStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return validationError(err)
	}
	var rest json.RawMessage
	if err := dec.Decode(&rest); !errors.Is(err, io.EOF) {
		return validationError(errTrailingData)
	}
	return Validate(dst)
}

var errTrailingData = errors.New("unexpected data after JSON value")
