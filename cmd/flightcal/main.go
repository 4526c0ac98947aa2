package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"flightcal/internal/app"
	"flightcal/internal/config"
	appLog "flightcal/internal/log"
)

// flagConfig holds CLI flag values; flags override the config file.
type flagConfig struct {
	configPath string
	outPath    string
	once       bool
	verbose    bool
}

func main() {
	flags := parseFlags()

	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("flightcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI -out overrides the config output path if provided.
	if flags.outPath != "" {
		conf.OutputPath = flags.outPath
	}

	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"route", conf.Route.Origin+"-"+conf.Route.Destination,
		"window_mode", conf.Window.Mode,
		"rolling_days", conf.Window.RollingDays,
		"max_dates", conf.Window.MaxDates,
		"selection_policy", conf.SelectionPolicy,
		"credentials", len(conf.API.Credentials),
		"output", conf.OutputPath,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	a := app.New(conf)

	if flags.once {
		if err := a.Run(ctx); err != nil {
			appLog.Error("pipeline failed", err)
			os.Exit(1)
		}
		appLog.Info("flightcal done", "output", conf.OutputPath)
		return
	}

	if err := a.RunScheduled(ctx); err != nil {
		appLog.Error("scheduler failed", err)
		os.Exit(1)
	}
	appLog.Info("flightcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "flightcal.yaml", "Path to config file")
	flag.StringVar(&cfg.outPath, "out", "", "Output ICS path (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one scan+assemble pass and exit")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
