package overlay

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "flightcal/internal/log"
)

// nationalHoliday is one fixed-date Tunisian public holiday.
type nationalHoliday struct {
	month       time.Month
	day         int
	title       string
	description string
}

// nationalHolidays is the static table of fixed-date holidays. Movable
// religious holidays are not here; those come from the feed overlay.
var nationalHolidays = []nationalHoliday{
	{time.January, 1, "🇹🇳 Jour de l'An", "Nouvel an. Jour férié en Tunisie."},
	{time.March, 20, "🇹🇳 Fête de l'Indépendance", "Indépendance de la Tunisie (1956). Jour férié."},
	{time.April, 9, "🇹🇳 Journée des Martyrs", "Commémoration du 9 avril 1938. Jour férié."},
	{time.May, 1, "🇹🇳 Fête du Travail", "Fête internationale du travail. Jour férié."},
	{time.July, 25, "🇹🇳 Fête de la République", "Proclamation de la République (1957). Jour férié."},
	{time.August, 13, "🇹🇳 Fête de la Femme", "Journée nationale de la femme. Jour férié."},
	{time.October, 15, "🇹🇳 Fête de l'Évacuation", "Évacuation de Bizerte (1963). Jour férié."},
	{time.December, 17, "🇹🇳 Fête de la Révolution", "Déclenchement de la révolution (2010). Jour férié."},
}

// NationalHolidays instantiates the fixed-date table for the current and
// next calendar year and keeps the dates on/after today. It has no
// network dependency and must run even when the religious feed fails.
func NationalHolidays(today time.Time) []Entry {
	yearStart := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	entries := make([]Entry, 0, 2*len(nationalHolidays))

	for _, h := range nationalHolidays {
		r, err := rrule.NewRRule(rrule.ROption{
			Freq:       rrule.YEARLY,
			Dtstart:    yearStart,
			Bymonth:    []int{int(h.month)},
			Bymonthday: []int{h.day},
			Count:      2,
		})
		if err != nil {
			appLog.Error("holiday rule construction failed", err, "title", h.title)
			continue
		}

		for _, occ := range r.All() {
			if occ.Before(day) {
				continue
			}
			entries = append(entries, Entry{
				Start:       occ,
				Days:        1,
				Title:       h.title,
				Description: h.description,
			})
		}
	}

	appLog.Info("national holidays generated", "entries", len(entries))
	return entries
}
