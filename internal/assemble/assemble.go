// Package assemble builds the output ICS calendar from scan results and
// overlay entries and serializes it to a file.
package assemble

import (
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "flightcal/internal/log"
	"flightcal/internal/model"
	"flightcal/internal/window"
)

const (
	icsDateTimeLayout = "20060102T150405"
	scanDateLayout    = "2006-01-02 15:04"

	// hotDealThreshold is the base price in euros under which a flight
	// event gets the fire icon in its title.
	hotDealThreshold = 150
)

// gpsAddresses maps airport codes to precise addresses so the calendar
// location works directly in navigation apps.
var gpsAddresses = map[string]string{
	"ORY": "Aéroport de Paris-Orly (ORY), 94390 Orly, France",
	"CDG": "Aéroport Paris-Charles de Gaulle (CDG), 95700 Roissy-en-France",
	"BVA": "Aéroport Paris-Beauvais (BVA), Route de l'Aéroport, 60000 Tillé, France",
	"DJE": "Aéroport International de Djerba-Zarzis (DJE), 4120 Mellita, Tunisie",
	"TUN": "Aéroport International de Tunis-Carthage (TUN), 1080 Tunis, Tunisie",
	"PAR": "Aéroports de Paris (Générique)",
}

// Builder accumulates calendar events for one run and serializes them
// once at the end. Events are only ever appended; identifiers are
// deterministic so re-running with the same inputs produces the same
// calendar.
type Builder struct {
	cal      *ical.Calendar
	parisLoc *time.Location
	tunisLoc *time.Location
	now      time.Time
}

// NewBuilder creates a Builder whose serialized output carries the given
// display name.
func NewBuilder(displayName string) (*Builder, error) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return nil, fmt.Errorf("load Europe/Paris: %w", err)
	}
	tunis, err := time.LoadLocation("Africa/Tunis")
	if err != nil {
		return nil, fmt.Errorf("load Africa/Tunis: %w", err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(displayName)

	return &Builder{
		cal:      cal,
		parisLoc: paris,
		tunisLoc: tunis,
		now:      time.Now(),
	}, nil
}

// AddFlightEvent appends one timed event for a selected flight. The start
// is tagged with the origin's civil timezone and the end with the
// destination's, chosen by travel direction. An arrival time-of-day
// lexicographically before the departure means an overnight flight; the
// end date is bumped by one day.
func (b *Builder) AddFlightEvent(sf *model.SelectedFlight) error {
	originLoc, destLoc := b.parisLoc, b.tunisLoc
	if sf.Direction == model.DirectionReturn {
		originLoc, destLoc = b.tunisLoc, b.parisLoc
	}

	start, err := time.ParseInLocation(scanDateLayout, sf.Date+" "+sf.DepartTime, originLoc)
	if err != nil {
		return fmt.Errorf("parse departure time: %w", err)
	}

	endDate := sf.Date
	if sf.ArriveTime < sf.DepartTime {
		d, perr := time.ParseInLocation(window.ISODate, sf.Date, destLoc)
		if perr != nil {
			return fmt.Errorf("parse scan date: %w", perr)
		}
		endDate = d.AddDate(0, 0, 1).Format(window.ISODate)
	}
	end, err := time.ParseInLocation(scanDateLayout, endDate+" "+sf.ArriveTime, destLoc)
	if err != nil {
		return fmt.Errorf("parse arrival time: %w", err)
	}

	uid := fmt.Sprintf("%s-%s-%s@flightcal", sf.FlightNumber, sf.Date, sf.Direction)
	event := b.cal.AddEvent(uid)
	event.SetDtStampTime(b.now)

	event.SetProperty(ical.ComponentPropertyDtStart, start.Format(icsDateTimeLayout),
		&ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{originLoc.String()}})
	event.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icsDateTimeLayout),
		&ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{destLoc.String()}})

	mode := "Aller Simple"
	if sf.RoundTrip {
		mode = "Aller-Retour"
	}

	icon := "✈️"
	if sf.BasePrice < hotDealThreshold {
		icon = "🔥"
	}
	event.SetSummary(fmt.Sprintf("%s %d€ %s→%s (%s - %s)",
		icon, sf.BasePrice, sf.DepartureCode, sf.ArrivalCode, mode, sf.Airline))

	location := gpsAddresses[sf.DepartureCode]
	if location == "" {
		location = "Aéroport " + sf.DepartureCode
	}
	event.SetLocation(location)

	var desc strings.Builder
	fmt.Fprintf(&desc, "💰 PRIX : %d € (tarif de base)\n", sf.BasePrice)
	fmt.Fprintf(&desc, "🎒 Avec bagage cabine : %d € / 🧳 Avec bagage soute : %d €\n", sf.CabinPrice, sf.CheckedPrice)
	if sf.PriceNote != "" {
		fmt.Fprintf(&desc, "ℹ️ %s\n", sf.PriceNote)
	}
	fmt.Fprintf(&desc, "🎫 TYPE : %s\n", mode)
	fmt.Fprintf(&desc, "🛫 ALLER : %s (%s) -> %s (%s)\n", sf.DepartTime, sf.DepartureCode, sf.ArriveTime, sf.ArrivalCode)
	fmt.Fprintf(&desc, "🏢 COMPAGNIE : %s (%s)\n", sf.Airline, sf.FlightNumber)
	if sf.ReturnInfo != "" {
		desc.WriteString(sf.ReturnInfo + "\n")
	}
	fmt.Fprintf(&desc, "\n📍 GPS : %s", location)
	event.SetDescription(desc.String())

	// Reminder the day before departure.
	alarm := event.AddAlarm()
	alarm.SetAction(ical.ActionDisplay)
	alarm.SetTrigger("-P1D")

	appLog.Debug("flight event added", "uid", uid)
	return nil
}

// AddHolidayEvent appends one all-day event spanning days calendar days
// starting at date. Holiday events carry no timezone and a fixed Tunisia
// location.
func (b *Builder) AddHolidayEvent(date time.Time, days int, title, description string) {
	if days < 1 {
		days = 1
	}

	uid := fmt.Sprintf("%s-%s@flightcal", slugify(title), date.Format(window.ISODate))
	event := b.cal.AddEvent(uid)
	event.SetDtStampTime(b.now)
	event.SetAllDayStartAt(date)
	event.SetAllDayEndAt(date.AddDate(0, 0, days))
	event.SetSummary(title)
	event.SetDescription(description)
	event.SetLocation("Tunisia")

	appLog.Debug("holiday event added", "uid", uid)
}

// EventCount returns the number of events accumulated so far.
func (b *Builder) EventCount() int {
	return len(b.cal.Events())
}

// Serialize renders the calendar to its ICS text form.
func (b *Builder) Serialize() string {
	return b.cal.Serialize()
}

// WriteFile serializes the calendar to path, replacing any previous run's
// output.
func (b *Builder) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(b.Serialize()), 0o644); err != nil {
		return err
	}
	appLog.Info("calendar written", "path", path, "events", b.EventCount())
	return nil
}

// slugify reduces an event title to a lowercase ASCII identifier fragment
// for deterministic UIDs. Emoji and accents are dropped.
func slugify(s string) string {
	var out strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				out.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(out.String(), "-")
}
