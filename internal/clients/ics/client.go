// Package ics downloads an iCalendar feed and flattens it into dashboard
// calendar events.
package ics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"homeboard/internal/errs"
	"homeboard/internal/models"
)

const (
	defaultUserAgent = "homeboard/1.0"
	maxFeedBytes     = 8 << 20
	dateLayout       = "2006-01-02"

	// DefaultPast and DefaultAhead bound which events are kept.
	DefaultPast  = 24 * time.Hour
	DefaultAhead = 60 * 24 * time.Hour
)

// Fetcher is implemented by *Client and by test fakes.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]models.CalendarEvent, error)
}

var _ Fetcher = (*Client)(nil)

type Client struct {
	http      *http.Client
	userAgent string
	clock     models.Clock
	location  *time.Location
	past      time.Duration
	ahead     time.Duration
}

func NewClient(timeout time.Duration, clock models.Clock) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		clock:     clock,
		location:  time.Local,
		past:      DefaultPast,
		ahead:     DefaultAhead,
	}
}

// Fetch downloads feedURL and returns its events inside the window, sorted
// by date then title. Recurring rules are not expanded; only the first
// occurrence of a series is listed.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]models.CalendarEvent, error) {
	feedURL = strings.TrimSpace(feedURL)
	// webcal:// is how most providers share a subscribable link
	if rest, ok := strings.CutPrefix(feedURL, "webcal://"); ok {
		feedURL = "https://" + rest
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrUpstream, err.Error())
	}
	req.Header.Set("Accept", "text/calendar")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrUpstream, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: calendar feed returned status %d", errs.ErrUpstream, resp.StatusCode)
	}
	return c.Parse(io.LimitReader(resp.Body, maxFeedBytes))
}

// Parse converts an iCalendar stream into events.
func (c *Client) Parse(r io.Reader) ([]models.CalendarEvent, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse calendar: %s", errs.ErrUpstream, err.Error())
	}

	now := c.clock()
	from := now.Add(-c.past)
	to := now.Add(c.ahead)

	seen := make(map[string]struct{})
	events := make([]models.CalendarEvent, 0)
	for _, ev := range cal.Events() {
		start, allDay, ok := c.start(ev)
		if !ok || start.Before(from) || start.After(to) {
			continue
		}
		date := start.In(c.location).Format(dateLayout)
		if allDay {
			date = start.Format(dateLayout)
		}

		id := "ics-" + ev.Id() + "-" + date
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		events = append(events, models.CalendarEvent{
			ID:     id,
			Title:  summary(ev),
			Date:   date,
			AllDay: allDay,
			Source: models.EventSourceICS,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Title < events[j].Title
	})
	return events, nil
}

func (c *Client) start(ev *ical.VEvent) (time.Time, bool, bool) {
	prop := ev.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return time.Time{}, false, false
	}
	if isDateOnly(prop) {
		t, err := ev.GetAllDayStartAt()
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	t, err := ev.GetStartAt()
	if err != nil {
		return time.Time{}, false, false
	}
	return t, false, true
}

func isDateOnly(prop *ical.IANAProperty) bool {
	for _, v := range prop.ICalParameters[string(ical.ParameterValue)] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	return len(strings.TrimSpace(prop.Value)) == len("20060102")
}

func summary(ev *ical.VEvent) string {
	if p := ev.GetProperty(ical.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
		return strings.TrimSpace(p.Value)
	}
	return "(untitled)"
}
