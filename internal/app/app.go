// Package app wires the scan pipeline together: date window, sequential
// flight scans, holiday overlays, and the serialized calendar artifact.
package app

import (
	"context"
	"errors"
	"time"

	"flightcal/internal/assemble"
	"flightcal/internal/config"
	"flightcal/internal/feed"
	appLog "flightcal/internal/log"
	"flightcal/internal/model"
	"flightcal/internal/overlay"
	"flightcal/internal/scanner"
	"flightcal/internal/window"
)

// App runs the full scan-and-assemble pipeline for one configuration.
type App struct {
	cfg     *config.Config
	flights *scanner.Client
	feeds   *feed.Client

	outboundCreds *scanner.Cursor
	returnCreds   *scanner.Cursor
}

// New builds an App from a validated config. With exactly two credentials
// the quota is partitioned per direction; any other count rotates all
// credentials over all scans.
func New(cfg *config.Config) *App {
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	flights := scanner.NewClient(cfg.API.Host, cfg.API.Path, timeout,
		scanner.SelectionPolicy(cfg.SelectionPolicy))

	var out, ret *scanner.Cursor
	if len(cfg.API.Credentials) == 2 {
		out = scanner.NewCursor(cfg.API.Credentials[:1])
		ret = scanner.NewCursor(cfg.API.Credentials[1:])
	} else {
		shared := scanner.NewCursor(cfg.API.Credentials)
		out, ret = shared, shared
	}

	return &App{
		cfg:           cfg,
		flights:       flights,
		feeds:         feed.NewClient(timeout),
		outboundCreds: out,
		returnCreds:   ret,
	}
}

// Run executes one complete pipeline pass: build the date window, scan
// every (date, direction) pair sequentially, add holiday overlays, and
// write the calendar file.
func (a *App) Run(ctx context.Context) error {
	today := time.Now()

	dates := a.buildWindow(ctx, today)
	appLog.Info("scan window ready",
		"mode", a.cfg.Window.Mode,
		"dates", len(dates),
		"estimated_requests", 2*len(dates),
	)

	builder, err := assemble.NewBuilder(a.cfg.CalendarName)
	if err != nil {
		return err
	}

	a.scanAll(ctx, dates, builder)
	a.addOverlays(ctx, today, builder)

	return builder.WriteFile(a.cfg.OutputPath)
}

// buildWindow produces the list of dates to scan. In vacations mode a
// feed failure degrades to the rolling window rather than aborting.
func (a *App) buildWindow(ctx context.Context, today time.Time) []string {
	if a.cfg.Window.Mode != "vacations" {
		return window.Rolling(today, a.cfg.Window.RollingDays)
	}

	body, err := a.feeds.Fetch(ctx, a.cfg.Window.VacationFeedURL)
	if err != nil {
		appLog.Warn("vacation feed unreachable, falling back to rolling window", "err", err)
		return window.Rolling(today, a.cfg.Window.RollingDays)
	}
	events, err := feed.Parse(body)
	if err != nil {
		appLog.Warn("vacation feed unparseable, falling back to rolling window", "err", err)
		return window.Rolling(today, a.cfg.Window.RollingDays)
	}

	periods := feed.Vacations(events, today)
	return window.FromVacations(today, periods, a.cfg.Window.PadDays, a.cfg.Window.MaxDates)
}

// scanAll walks the date window and issues one scan per direction per
// date, strictly sequentially, pausing between requests. A credential
// that hits its quota is retired; remaining dates for its direction are
// skipped.
func (a *App) scanAll(ctx context.Context, dates []string, builder *assemble.Builder) {
	type leg struct {
		direction model.Direction
		origin    string
		dest      string
		creds     *scanner.Cursor
	}
	legs := []leg{
		{model.DirectionOutbound, a.cfg.Route.Origin, a.cfg.Route.Destination, a.outboundCreds},
		{model.DirectionReturn, a.cfg.Route.Destination, a.cfg.Route.Origin, a.returnCreds},
	}

	sleep := time.Duration(a.cfg.SleepMs) * time.Millisecond
	found := 0

	for _, date := range dates {
		for _, l := range legs {
			if ctx.Err() != nil {
				appLog.Info("scan loop cancelled", "date", date)
				return
			}

			cred, ok := l.creds.Next()
			if !ok {
				// Every credential for this leg is quota-dead.
				continue
			}

			req := model.ScanRequest{
				Date:        date,
				Origin:      l.origin,
				Destination: l.dest,
				Direction:   l.direction,
				Credential:  cred,
			}
			if l.direction == model.DirectionOutbound {
				req.ReturnDate = a.summerReturnDate(date)
			}

			sf, err := a.flights.Scan(ctx, req)
			switch {
			case err == nil:
				if aerr := builder.AddFlightEvent(sf); aerr != nil {
					appLog.Error("flight event rejected", aerr, "date", date, "direction", string(l.direction))
				} else {
					found++
					appLog.Info("scan hit",
						"date", date,
						"direction", string(l.direction),
						"price", sf.BasePrice,
						"airline", sf.Airline,
					)
				}
			case errors.Is(err, scanner.ErrQuotaExhausted):
				l.creds.MarkDead(cred)
				appLog.Warn("credential quota exhausted, skipping its remaining dates",
					"direction", string(l.direction), "live_credentials", l.creds.Live())
			case errors.Is(err, scanner.ErrNoFlights):
				appLog.Info("no flights", "date", date, "direction", string(l.direction))
			default:
				appLog.Error("scan failed", err, "date", date, "direction", string(l.direction))
			}

			if !sleepOrDone(ctx, sleep) {
				return
			}
		}
	}

	appLog.Info("scan pass complete", "dates", len(dates), "flights_found", found)
}

// summerReturnDate returns the round-trip return date for departures in a
// configured summer month, empty otherwise.
func (a *App) summerReturnDate(date string) string {
	d, err := time.Parse(window.ISODate, date)
	if err != nil {
		return ""
	}
	for _, m := range a.cfg.SummerMonths {
		if int(d.Month()) == m {
			return d.AddDate(0, 0, a.cfg.SummerTripDays).Format(window.ISODate)
		}
	}
	return ""
}

// addOverlays appends religious events from the feed and the fixed
// national holidays. The holidays do not depend on the feed and are added
// even when it fails.
func (a *App) addOverlays(ctx context.Context, today time.Time, builder *assemble.Builder) {
	if a.cfg.ReligiousFeedURL != "" {
		body, err := a.feeds.Fetch(ctx, a.cfg.ReligiousFeedURL)
		if err != nil {
			appLog.Warn("religious feed unreachable, skipping cultural overlay", "err", err)
		} else if events, perr := feed.Parse(body); perr != nil {
			appLog.Warn("religious feed unparseable, skipping cultural overlay", "err", perr)
		} else {
			for _, e := range overlay.Religious(events, today) {
				builder.AddHolidayEvent(e.Start, e.Days, e.Title, e.Description)
			}
		}
	}

	for _, e := range overlay.NationalHolidays(today) {
		builder.AddHolidayEvent(e.Start, e.Days, e.Title, e.Description)
	}
}

// sleepOrDone pauses between scans; returns false when the context was
// cancelled during the pause.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
