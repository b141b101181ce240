package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"dayplan/internal/agenda"
	appLog "dayplan/internal/log"
)

var ErrEmptyCalendar = errors.New("empty ICS body")

// LoadICS reads the events of one date from an iCalendar file.
func LoadICS(path string, date time.Time, defaultDuration int) ([]Entry, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := DecodeICS(bytes.NewReader(body), date, defaultDuration)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// DecodeICS keeps the timed VEVENTs that start on date, read in date's
// location. All-day events are skipped, an end past midnight is cut at
// 24:00 and recurrence rules are not expanded.
func DecodeICS(r io.Reader, date time.Time, defaultDuration int) ([]Entry, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyCalendar
	}
	if defaultDuration <= 0 {
		defaultDuration = agenda.DefaultDuration
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	loc := date.Location()
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var entries []Entry
	for _, ve := range cal.Events() {
		e, ok, err := eventEntry(ve, midnight, defaultDuration)
		if err != nil {
			appLog.Error("ics vevent skipped", err, "uid", propValue(ve, ical.ComponentPropertyUniqueId))
			continue
		}
		if ok {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })

	appLog.Info("ics parse completed", "date", midnight.Format(time.DateOnly), "event_count", len(entries))
	return entries, nil
}

func eventEntry(ve *ical.VEvent, midnight time.Time, defaultDuration int) (Entry, bool, error) {
	if allDay(ve) {
		return Entry{}, false, nil
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return Entry{}, false, err
	}
	start = start.In(midnight.Location())
	if !sameDate(start, midnight) {
		return Entry{}, false, nil
	}
	if rrule := propValue(ve, ical.ComponentPropertyRrule); rrule != "" {
		appLog.Debug("ics rrule not expanded", "uid", propValue(ve, ical.ComponentPropertyUniqueId), "rrule", rrule)
	}

	startMin := minutesSince(midnight, start)
	endMin := startMin + defaultDuration
	if end, err := ve.GetEndAt(); err == nil {
		endMin = minutesSince(midnight, end.In(midnight.Location()))
	}
	endMin = min(max(endMin, startMin), agenda.MinutesPerDay)

	e := Entry{
		Title: propValue(ve, ical.ComponentPropertySummary),
		Start: startMin,
		End:   endMin,
	}
	return e, true, e.Validate()
}

// allDay follows DTSTART: VALUE=DATE or a value without a time part.
func allDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// minutesSince counts wall-clock minutes so DST days still map 09:00 to 540.
func minutesSince(midnight, t time.Time) int {
	if !sameDate(t, midnight) {
		if t.Before(midnight) {
			return 0
		}
		return agenda.MinutesPerDay
	}
	return t.Hour()*60 + t.Minute()
}
