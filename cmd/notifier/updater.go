package main

import (
	"heavymetal-notifier/internal/components/chrono"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/config"
	"heavymetal-notifier/internal/feed"
	"heavymetal-notifier/internal/jobs"
	"heavymetal-notifier/internal/scrapers/bandcamp"
	"heavymetal-notifier/internal/scrapers/metallum"
	"heavymetal-notifier/internal/scrapers/wiki"
	"heavymetal-notifier/internal/store"
)

func InitUpdater(cfg config.Config, s store.Store, feeds feed.Service, clock chrono.API, tel telemetry.API) (jobs.Updater, error) {
	var lookup bandcamp.Lookup = bandcamp.Disabled{}
	if cfg.IsProd {
		lookup = bandcamp.NewHTTPLookup(bandcamp.HTTPLookupOptions{
			Delay:     cfg.BandcampDelay(),
			UserAgent: cfg.UserAgent,
		}, tel)
	}

	return jobs.NewUpdater(jobs.Options{
		Wiki: wiki.NewHTTPClient(wiki.HTTPClientOptions{
			UserAgent: cfg.UserAgent,
		}, tel),
		Metallum: metallum.NewHTTPClient(metallum.HTTPClientOptions{
			UserAgent:         cfg.UserAgent,
			RequestsPerSecond: cfg.Metallum.RequestsPerSecond,
		}, tel),
		MetallumOptions: metallum.Options{
			MaxPages: cfg.Metallum.MaxPages,
		},
		Bandcamp: lookup,
		Store:    s,
		Clock:    clock,
		Feed:     feeds,
	}, tel)
}
