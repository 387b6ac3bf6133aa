package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sp(s string) *string { return &s }
func ip(i int) *int       { return &i }
func bp(b bool) *bool     { return &b }

func TestMerge_NotePreservesSiblings(t *testing.T) {
	cur := DefaultState(testNow)
	cur.Events = []CalendarEvent{{ID: "e1", Title: "Dentist", Date: "2026-04-11", Source: EventSourceManual}}

	next := Merge(cur, StatePatch{Note: sp("Dinner at 6")}, testNow.Add(time.Second))

	assert.Equal(t, "Dinner at 6", next.Note)
	assert.True(t, next.Modules[ModuleCalendar])
	assert.Equal(t, cur.Events, next.Events)
	assert.Equal(t, cur.Layout, next.Layout)
	assert.Equal(t, cur.CustomTheme, next.CustomTheme)
}

func TestMerge_NestedObjectsMergeFieldByField(t *testing.T) {
	cur := DefaultState(testNow)
	cur.Weather = Weather{Location: "Portland", Temp: "55°F", Summary: "Rain", Forecast: []ForecastDay{}}

	next := Merge(cur, StatePatch{
		Modules:     map[string]bool{ModuleNote: true},
		Weather:     &WeatherPatch{Temp: sp("57°F")},
		CustomTheme: &CustomThemePatch{Accent: sp("#00ff00")},
		OffSchedule: &OffSchedulePatch{Enabled: bp(true)},
		Layout: &LayoutPatch{Modules: map[string]ModuleLayoutPatch{
			ModuleClock: {Order: ip(5)},
		}},
	}, testNow.Add(time.Second))

	assert.True(t, next.Modules[ModuleNote])
	assert.True(t, next.Modules[ModuleCalendar])
	assert.Equal(t, "Portland", next.Weather.Location)
	assert.Equal(t, "57°F", next.Weather.Temp)
	assert.Equal(t, "Rain", next.Weather.Summary)
	assert.Equal(t, "#00ff00", next.CustomTheme.Accent)
	assert.Equal(t, cur.CustomTheme.Background, next.CustomTheme.Background)
	assert.True(t, next.OffSchedule.Enabled)
	assert.Equal(t, DefaultOffFrom, next.OffSchedule.From)

	clock := next.Layout.Modules[ModuleClock]
	assert.Equal(t, 5, clock.Order)
	assert.Equal(t, cur.Layout.Modules[ModuleClock].Column, clock.Column)
	assert.Equal(t, cur.Layout.Modules[ModuleWeather], next.Layout.Modules[ModuleWeather])
}

func TestMerge_ArraysReplaced(t *testing.T) {
	cur := DefaultState(testNow)
	cur.PhotoSources.Local = []string{"a.jpg", "b.jpg"}

	next := Merge(cur, StatePatch{
		PhotoSources: &PhotoSourcesPatch{Local: []string{"c.jpg"}},
	}, testNow.Add(time.Second))

	assert.Equal(t, []string{"c.jpg"}, next.PhotoSources.Local)
	assert.Equal(t, cur.PhotoSources.IntervalSeconds, next.PhotoSources.IntervalSeconds)
}

func TestMerge_DoesNotMutateCurrent(t *testing.T) {
	cur := DefaultState(testNow)
	_ = Merge(cur, StatePatch{
		Modules: map[string]bool{ModuleClock: false},
		Layout:  &LayoutPatch{Columns: ip(5)},
	}, testNow.Add(time.Second))

	assert.True(t, cur.Modules[ModuleClock])
	assert.Equal(t, DefaultLayoutColumns, cur.Layout.Columns)
}

func TestMerge_UpdatedAtAlwaysAdvances(t *testing.T) {
	cur := DefaultState(testNow)

	later := Merge(cur, StatePatch{}, testNow.Add(time.Minute))
	assert.True(t, later.UpdatedAt.Equal(testNow.Add(time.Minute)))

	same := Merge(cur, StatePatch{}, testNow)
	assert.True(t, same.UpdatedAt.After(cur.UpdatedAt))

	skewed := Merge(cur, StatePatch{}, testNow.Add(-time.Hour))
	assert.True(t, skewed.UpdatedAt.After(cur.UpdatedAt))
}

func TestMerge_ClientUpdatedAtIgnored(t *testing.T) {
	cur := DefaultState(testNow)
	bogus := testNow.Add(365 * 24 * time.Hour)

	next := Merge(cur, StatePatch{UpdatedAt: &bogus}, testNow.Add(time.Second))
	assert.True(t, next.UpdatedAt.Equal(testNow.Add(time.Second)))
}

func TestMerge_ZeroValuesBackfilled(t *testing.T) {
	cur := DefaultState(testNow)

	next := Merge(cur, StatePatch{Theme: sp(""), Layout: &LayoutPatch{Columns: ip(0)}}, testNow.Add(time.Second))
	assert.Equal(t, DefaultTheme, next.Theme)
	assert.Equal(t, DefaultLayoutColumns, next.Layout.Columns)
}
