// Package overlay derives cultural and national holiday events that are
// laid over the flight calendar: religious dates parsed from an external
// feed, and fixed Tunisian public holidays generated locally.
package overlay

import (
	"strconv"
	"strings"
	"time"

	appLog "flightcal/internal/log"
	"flightcal/internal/model"
)

// Entry is one all-day overlay event. Days is the span length; 1 for a
// single-day event.
type Entry struct {
	Start       time.Time
	Days        int
	Title       string
	Description string
}

// horizonDays bounds how far ahead feed events are considered.
const horizonDays = 700

// ramadanOddOffsets are day offsets from the Ramadan start for the odd
// nights of the last ten days (nights 21, 23, 25, 27, 29), the candidate
// dates for Laylat al-Qadr.
var ramadanOddOffsets = []struct {
	offset int
	night  int
}{
	{20, 21},
	{22, 23},
	{24, 25},
	{26, 27},
	{28, 29},
}

// Religious maps feed events to overlay entries by keyword. Matching is
// case-insensitive on the event title; the Aïd el-Fitr keywords are
// checked before the bare "ramadan" keyword so "End of Ramadan" does not
// register as the month itself.
func Religious(events []model.FeedEvent, today time.Time) []Entry {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	horizon := day.AddDate(0, 0, horizonDays)
	entries := make([]Entry, 0)

	for _, ev := range events {
		if ev.Start.Before(day) || ev.Start.After(horizon) {
			continue
		}

		title := strings.ToLower(ev.Summary)

		switch {
		case strings.Contains(title, "fitr") || strings.Contains(title, "end of ramadan"):
			entries = append(entries, Entry{
				Start:       ev.Start,
				Days:        1,
				Title:       "🎉 Aïd el-Fitr",
				Description: "Fin du Ramadan. Jour férié en Tunisie, forte demande de vols.",
			})

		case strings.Contains(title, "ramadan"):
			entries = append(entries, ramadanEntries(ev.Start)...)

		case strings.Contains(title, "adha") || strings.Contains(title, "kebir"):
			entries = append(entries, Entry{
				Start:       ev.Start,
				Days:        1,
				Title:       "🐑 Aïd el-Kebir (Aïd el-Adha)",
				Description: "Fête du sacrifice. Jour férié en Tunisie, forte demande de vols.",
			})

		case strings.Contains(title, "mawlid") || strings.Contains(title, "prophet"):
			entries = append(entries, Entry{
				Start:       ev.Start,
				Days:        1,
				Title:       "🕌 Mouled (Mawlid)",
				Description: "Naissance du Prophète. Jour férié en Tunisie.",
			})

		case strings.Contains(title, "ashura"):
			entries = append(entries, Entry{
				Start:       ev.Start,
				Days:        1,
				Title:       "🕌 Achoura",
				Description: "10e jour de Mouharram.",
			})
		}
	}

	appLog.Info("religious overlay derived", "feed_events", len(events), "entries", len(entries))
	return entries
}

// ramadanEntries expands one Ramadan start date into the 30-day month
// span plus the five odd-night events of the last ten days.
func ramadanEntries(start time.Time) []Entry {
	out := make([]Entry, 0, 1+len(ramadanOddOffsets))

	out = append(out, Entry{
		Start:       start,
		Days:        30,
		Title:       "🌙 Ramadan",
		Description: "Mois de Ramadan (30 jours). Horaires de vols et prix souvent atypiques.",
	})

	for _, n := range ramadanOddOffsets {
		out = append(out, Entry{
			Start: start.AddDate(0, 0, n.offset),
			Days:  1,
			Title: "✨ Nuit impaire du Ramadan",
			Description: "Nuit " + strconv.Itoa(n.night) + " du Ramadan, candidate pour Laylat al-Qadr. " +
				"Veillées nocturnes, forte affluence.",
		})
	}
	return out
}
