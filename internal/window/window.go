package window

import (
	"sort"
	"time"

	appLog "flightcal/internal/log"
	"flightcal/internal/model"
)

const (
	// ISODate is the wire format for scan dates.
	ISODate = "2006-01-02"

	// DefaultPadDays widens each vacation period on both sides so that
	// cheap flights just outside the school break are still caught.
	DefaultPadDays = 7
)

// Rolling returns n consecutive ISO dates starting at today+1. Same-day
// departures are skipped on purpose: they are either gone or priced out.
func Rolling(today time.Time, n int) []string {
	dates := make([]string, 0, n)
	cur := dayOf(today).AddDate(0, 0, 1)
	for i := 0; i < n; i++ {
		dates = append(dates, cur.Format(ISODate))
		cur = cur.AddDate(0, 0, 1)
	}
	return dates
}

// FromVacations derives a scan window from school-vacation periods: every
// period ending on/after today is expanded by padDays on both sides, the
// expansions are unioned, clipped to dates on/after today, sorted, and
// finally capped at maxDates to protect the API quota.
func FromVacations(today time.Time, periods []model.VacationPeriod, padDays, maxDates int) []string {
	if padDays < 0 {
		padDays = DefaultPadDays
	}

	base := dayOf(today)
	seen := make(map[string]struct{})

	for _, p := range periods {
		if dayOf(p.End).Before(base) {
			continue
		}
		start := dayOf(p.Start).AddDate(0, 0, -padDays)
		end := dayOf(p.End).AddDate(0, 0, padDays)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if d.Before(base) {
				continue
			}
			seen[d.Format(ISODate)] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if maxDates > 0 && len(dates) > maxDates {
		appLog.Info("vacation window capped", "derived", len(dates), "cap", maxDates)
		dates = dates[:maxDates]
	}
	return dates
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
