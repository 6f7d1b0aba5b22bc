package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/serious-social/conviction/config"
	"github.com/serious-social/conviction/internal/adapters/notify"
	"github.com/serious-social/conviction/internal/adapters/storage"
	"github.com/serious-social/conviction/internal/simulator"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	show := flag.Bool("show", false, "print stored market states and exit")
	events := flag.String("events", "", "print the event log of a claim id and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full market table (default: compact 1-line)")
	seed := flag.Int64("seed", 0, "override simulation seed (0 = use config)")
	flag.Parse()

	// Sin archivo de config se corre con defaults.
	path := *configPath
	if _, err := os.Stat(path); err != nil {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if path == "" {
		slog.Info("config file not found, using defaults", "path", *configPath)
	}

	journal, err := storage.NewSQLiteJournal(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer journal.Close()

	notifier := notify.NewConsoleWriter(os.Stdout, *table)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *show {
		showStates(ctx, journal, notifier)
		return
	}
	if *events != "" {
		showEvents(ctx, journal, *events)
		return
	}

	simCfg := simulator.Config{
		Markets:      cfg.Simulator.Markets,
		Actors:       cfg.Simulator.Actors,
		Ops:          cfg.Simulator.Ops,
		OpsPerSec:    cfg.Simulator.OpsPerSec,
		Seed:         cfg.Simulator.Seed,
		MintPerActor: cfg.Simulator.MintPerActor,
		AuthorStake:  cfg.Simulator.AuthorStake,
		TimeStep:     cfg.Simulator.TimeStepSecs,
		Params:       cfg.MarketParams(),
	}
	if *seed != 0 {
		simCfg.Seed = *seed
	}

	slog.Info("convictiond starting",
		"config", *configPath,
		"markets", simCfg.Markets,
		"actors", simCfg.Actors,
		"ops", simCfg.Ops,
		"seed", simCfg.Seed,
	)

	sim, err := simulator.New(simCfg, journal, notifier)
	if err != nil {
		slog.Error("failed to build simulator", "err", err)
		os.Exit(1)
	}

	if _, err := sim.Run(ctx); err != nil {
		slog.Error("simulation exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("convictiond stopped cleanly")
}

// showStates imprime el último snapshot de cada mercado persistido.
func showStates(ctx context.Context, journal *storage.SQLiteJournal, notifier *notify.Console) {
	states, err := journal.ListStates(ctx)
	if err != nil {
		slog.Error("failed to list states", "err", err)
		os.Exit(1)
	}
	if err := notifier.Notify(ctx, states); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

// showEvents vuelca el event log de un claim en orden de inserción.
func showEvents(ctx context.Context, journal *storage.SQLiteJournal, claimID string) {
	evs, err := journal.Events(ctx, claimID)
	if err != nil {
		slog.Error("failed to list events", "err", err, "claim", claimID)
		os.Exit(1)
	}
	if len(evs) == 0 {
		slog.Info("no events for claim", "claim", claimID)
		return
	}
	for _, ev := range evs {
		slog.Info("event",
			"kind", ev.Kind,
			"position", ev.PositionID,
			"owner", ev.Owner,
			"side", ev.Side,
			"amount", ev.Amount,
			"fee", ev.Fee,
			"early", ev.Early,
			"source", ev.Source,
			"ts", ev.Timestamp,
		)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
