package feed

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "flightcal/internal/log"
	"flightcal/internal/model"
)

// Parse turns a raw ICS payload into normalized FeedEvents. Individual
// malformed VEVENTs are logged and skipped; the rest of the feed is kept.
func Parse(body []byte) ([]model.FeedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.FeedEvent, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Error("feed vevent parse failed", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("feed parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.FeedEvent, error) {
	var out model.FeedEvent

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if out.Summary == "" {
		return out, errors.New("missing SUMMARY")
	}

	start, err := ve.GetStartAt()
	if err != nil {
		start, err = ve.GetAllDayStartAt()
		if err != nil {
			return out, err
		}
	}
	out.Start = start

	// Feeds sometimes omit DTEND on all-day entries; default to the start.
	out.End = start
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	} else if end, err := ve.GetAllDayEndAt(); err == nil {
		out.End = end
	}

	// All-day detection: VALUE=DATE parameter or a date-only DTSTART value.
	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}

	return out, nil
}

// Vacations extracts school-vacation periods from a zone feed: every event
// still running or starting on/after today becomes a period. All-day DTEND
// is exclusive in ICS, so one day is shaved off to get the last vacation
// day.
func Vacations(events []model.FeedEvent, today time.Time) []model.VacationPeriod {
	periods := make([]model.VacationPeriod, 0, len(events))
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	for _, ev := range events {
		end := ev.End
		if ev.AllDay && end.After(ev.Start) {
			end = end.AddDate(0, 0, -1)
		}
		if end.Before(day) {
			continue
		}
		periods = append(periods, model.VacationPeriod{Start: ev.Start, End: end})
	}
	return periods
}
