package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// APIConfig describes the flight-search API endpoint and its credentials.
type APIConfig struct {
	// Host is the API host, also sent as the credential host header.
	Host string `yaml:"host"`
	// Path is the search endpoint path.
	Path string `yaml:"path"`
	// Credentials is the list of API keys. With two entries the first is
	// used for outbound scans and the second for return scans; otherwise
	// keys rotate round-robin across all scans.
	Credentials []string `yaml:"credentials"`
	// TimeoutSeconds is the per-request network timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// RouteConfig is the scanned route. Scans are issued in both directions.
type RouteConfig struct {
	Origin      string `yaml:"origin"`
	Destination string `yaml:"destination"`
}

// WindowConfig controls which dates get scanned.
type WindowConfig struct {
	// Mode is "rolling" or "vacations". The vacations mode derives dates
	// from the school-calendar feed and falls back to rolling when the
	// feed is unreachable.
	Mode string `yaml:"mode"`
	// RollingDays is the rolling-window length.
	RollingDays int `yaml:"rolling_days"`
	// VacationFeedURL is the school-zone ICS feed (Zone C).
	VacationFeedURL string `yaml:"vacation_feed_url"`
	// PadDays widens each vacation period on both sides.
	PadDays int `yaml:"pad_days"`
	// MaxDates caps the derived window to protect the API quota.
	MaxDates int `yaml:"max_dates"`
}

// Config is the top-level application configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Route  RouteConfig  `yaml:"route"`
	Window WindowConfig `yaml:"window"`

	// SelectionPolicy is "base" (raw fare) or "checked_bag" (fare plus the
	// estimated checked-luggage surcharge). Default checked_bag: it ranks
	// flights by what the trip actually costs with a suitcase.
	SelectionPolicy string `yaml:"selection_policy"`

	// SummerMonths lists departure months searched as round trips.
	SummerMonths []int `yaml:"summer_months"`
	// SummerTripDays is the round-trip stay length used for those months.
	SummerTripDays int `yaml:"summer_trip_days"`

	// ReligiousFeedURL is the ICS feed for islamic holiday dates.
	ReligiousFeedURL string `yaml:"religious_feed_url"`

	// CalendarName is injected into the output as the display name.
	CalendarName string `yaml:"calendar_name"`
	// OutputPath is the ICS file written each run.
	OutputPath string `yaml:"output_path"`

	// Schedule is a cron expression for daemon mode.
	Schedule string `yaml:"schedule"`

	// SleepMs is the pause between consecutive scans, to stay under the
	// provider's rate limit.
	SleepMs int `yaml:"sleep_ms"`
}

// DefaultConfig returns an in-memory default configuration for the
// Paris–Djerba route.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host:           "google-flights2.p.rapidapi.com",
			Path:           "/api/v1/searchFlights",
			Credentials:    []string{},
			TimeoutSeconds: 30,
		},
		Route: RouteConfig{
			Origin:      "PAR",
			Destination: "DJE",
		},
		Window: WindowConfig{
			Mode:        "rolling",
			RollingDays: 30,
			PadDays:     7,
			MaxDates:    35,
		},
		SelectionPolicy:  "checked_bag",
		SummerMonths:     []int{7, 8},
		SummerTripDays:   14,
		ReligiousFeedURL: "",
		CalendarName:     "Vols Djerba",
		OutputPath:       "vols_djerba.ics",
		Schedule:         "0 6 * * MON",
		SleepMs:          1200,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.API.Host == "" {
		c.API.Host = def.API.Host
	}
	if c.API.Path == "" {
		c.API.Path = def.API.Path
	}
	if c.API.Credentials == nil {
		c.API.Credentials = []string{}
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = def.API.TimeoutSeconds
	}

	if c.Route.Origin == "" {
		c.Route.Origin = def.Route.Origin
	}
	if c.Route.Destination == "" {
		c.Route.Destination = def.Route.Destination
	}

	switch c.Window.Mode {
	case "rolling", "vacations":
		// ok
	default:
		c.Window.Mode = "rolling"
	}
	if c.Window.RollingDays <= 0 {
		c.Window.RollingDays = def.Window.RollingDays
	}
	if c.Window.PadDays <= 0 {
		c.Window.PadDays = def.Window.PadDays
	}
	if c.Window.MaxDates <= 0 {
		c.Window.MaxDates = def.Window.MaxDates
	}

	switch c.SelectionPolicy {
	case "base", "checked_bag":
		// ok
	default:
		c.SelectionPolicy = def.SelectionPolicy
	}

	if c.SummerMonths == nil {
		c.SummerMonths = def.SummerMonths
	}
	if c.SummerTripDays <= 0 {
		c.SummerTripDays = def.SummerTripDays
	}

	if c.CalendarName == "" {
		c.CalendarName = def.CalendarName
	}
	if c.OutputPath == "" {
		c.OutputPath = def.OutputPath
	}
	if c.Schedule == "" {
		c.Schedule = def.Schedule
	}
	if c.SleepMs <= 0 {
		c.SleepMs = def.SleepMs
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if len(c.API.Credentials) == 0 {
		return errors.New("config: at least one API credential is required")
	}
	for _, m := range c.SummerMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("config: invalid summer month %d", m)
		}
	}
	if c.Window.Mode == "vacations" && c.Window.VacationFeedURL == "" {
		return errors.New("config: vacations window mode requires vacation_feed_url")
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600)
//     and returned, so a first run leaves a template to fill in.
//   - If the file exists, it is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions; credentials live in this
// file.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".flightcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
