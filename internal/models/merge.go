package models

import "time"

// Merge applies a sparse patch onto the current document and returns the
// next document. Top-level scalars and arrays present in the patch replace
// the current value; nested objects merge field by field so siblings
// survive. UpdatedAt always moves forward, even for an empty patch.
func Merge(current SharedState, patch StatePatch, now time.Time) SharedState {
	next := current.Clone()

	if patch.Modules != nil {
		if next.Modules == nil {
			next.Modules = make(map[string]bool, len(patch.Modules))
		}
		for k, v := range patch.Modules {
			next.Modules[k] = v
		}
	}
	if patch.Note != nil {
		next.Note = *patch.Note
	}
	if patch.Events != nil {
		next.Events = cloneSlice(patch.Events)
	}
	if patch.Weather != nil {
		patch.Weather.apply(&next.Weather)
	}
	if patch.PhotoSources != nil {
		patch.PhotoSources.apply(&next.PhotoSources)
	}
	if patch.Theme != nil {
		next.Theme = *patch.Theme
	}
	if patch.CustomTheme != nil {
		patch.CustomTheme.apply(&next.CustomTheme)
	}
	if patch.Layout != nil {
		patch.Layout.apply(&next.Layout)
	}
	if patch.OffSchedule != nil {
		patch.OffSchedule.apply(&next.OffSchedule)
	}

	next.UpdatedAt = advance(current.UpdatedAt, now)
	return EnsureDefaults(next)
}

// advance returns now, or the smallest step past prev when the clock has not
// moved (or moved backwards) since the last write.
func advance(prev, now time.Time) time.Time {
	now = now.UTC()
	if !now.After(prev) {
		return prev.Add(time.Millisecond).UTC()
	}
	return now
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func (p *WeatherPatch) apply(w *Weather) {
	setString(&w.Location, p.Location)
	setString(&w.Temp, p.Temp)
	setString(&w.Summary, p.Summary)
	setString(&w.Icon, p.Icon)
	setString(&w.High, p.High)
	setString(&w.Low, p.Low)
	setString(&w.UpdatedAt, p.UpdatedAt)
	if p.Forecast != nil {
		w.Forecast = cloneSlice(p.Forecast)
	}
}

func (p *PhotoSourcesPatch) apply(ps *PhotoSources) {
	if p.Local != nil {
		ps.Local = cloneSlice(p.Local)
	}
	if p.Remote != nil {
		ps.Remote = cloneSlice(p.Remote)
	}
	if p.Albums != nil {
		ps.Albums = cloneSlice(p.Albums)
	}
	setInt(&ps.IntervalSeconds, p.IntervalSeconds)
	setString(&ps.Fit, p.Fit)
}

func (p *CustomThemePatch) apply(t *CustomTheme) {
	setString(&t.Background, p.Background)
	setString(&t.Surface, p.Surface)
	setString(&t.Text, p.Text)
	setString(&t.Accent, p.Accent)
	setString(&t.Muted, p.Muted)
}

func (p *LayoutPatch) apply(l *Layout) {
	setInt(&l.Columns, p.Columns)
	if len(p.Modules) == 0 {
		return
	}
	if l.Modules == nil {
		l.Modules = make(map[string]ModuleLayout, len(p.Modules))
	}
	for name, mp := range p.Modules {
		ml := l.Modules[name]
		setInt(&ml.Column, mp.Column)
		setInt(&ml.Span, mp.Span)
		setInt(&ml.Order, mp.Order)
		setString(&ml.Height, mp.Height)
		l.Modules[name] = ml
	}
}

func (p *OffSchedulePatch) apply(o *OffSchedule) {
	if p.Enabled != nil {
		o.Enabled = *p.Enabled
	}
	setString(&o.From, p.From)
	setString(&o.To, p.To)
}
