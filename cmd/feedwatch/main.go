package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/surgecast/surgecast/internal/feedwatch"
)

// Default configuration constants.
const (
	defaultSnapshots   = 6
	defaultTimeout     = 10 * time.Second
	defaultWatchBudget = 5 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		snapshots = flag.Int("snapshots", defaultSnapshots, "Number of snapshots to observe")
		kind      = flag.String("scenario", "", "Scenario kind to fire mid-run (empty disables)")
		city      = flag.String("city", "chicago", "City the scenario targets")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Log every received snapshot")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		feedwatch.ShowHelp()
		return
	}

	if err := feedwatch.SetupLogging(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultWatchBudget)
	defer cancel()

	config := &feedwatch.Config{
		BaseURL:      *baseURL,
		Snapshots:    *snapshots,
		ScenarioKind: *kind,
		ScenarioCity: *city,
		Timeout:      *timeout,
		Verbose:      *verbose,
	}

	if err := feedwatch.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Watch failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
