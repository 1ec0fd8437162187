package main

import (
	"flag"
	"log/slog"
	"net/http"

	"heavymetal-notifier/internal/components/chrono"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/config"
	"heavymetal-notifier/internal/feed"
	"heavymetal-notifier/internal/store"
	"heavymetal-notifier/internal/store/db"
	"heavymetal-notifier/lib/serviceutil"
	"heavymetal-notifier/lib/sqliteutil"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialScrape := flag.Bool("scrape", false, "Trigger scraping immediately on run, even if the current year is already stored.")
	configPath := flag.String("config", "config.json5", "Path to the json5 config file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		serviceutil.Fatal("load timezone", err)
	}

	database, err := sqliteutil.OpenDB(db.Schema, cfg.DatabaseUrl)
	if err != nil {
		serviceutil.Fatal("open database", err)
	}
	defer database.Close()
	s := store.NewStore(database)

	tel := telemetry.SlogAPI{}

	feeds := feed.NewService(s, clock, tel, cfg.BaseUrl)

	updater, err := InitUpdater(cfg, s, feeds, clock, tel)
	if err != nil {
		serviceutil.Fatal("init updater", err)
	}

	cron := chrono.NewStandardCron(tel, clock)
	defer cron.Stop()
	err = cron.Cron(cfg.Schedule, func() {
		updater.UpdateCurrentYear(ctx)
	})
	if err != nil {
		serviceutil.Fatal("schedule update", err)
	}

	stored, err := s.CountReleases(ctx, clock.Now().Year())
	if err != nil {
		serviceutil.Fatal("count stored releases", err)
	}
	if *initialScrape || stored == 0 {
		slog.Info("updating calendar at boot", "stored_releases", stored)
		go updater.UpdateCurrentYear(ctx)
	}

	mux := http.NewServeMux()
	feeds.Register(mux)

	err = serviceutil.StartHttpServer(ctx, cfg.ServicePort, mux)
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
