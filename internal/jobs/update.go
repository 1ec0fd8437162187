// Package jobs contains the work that runs on a schedule.
package jobs

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/components/assert"
	"heavymetal-notifier/internal/components/chrono"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/scrapers/bandcamp"
	"heavymetal-notifier/internal/scrapers/metallum"
	"heavymetal-notifier/internal/scrapers/wiki"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

const (
	report_update_conflict = "update.conflict"
	report_update_done     = "update.done"
	report_update_feed     = "update.feed"
	report_update_releases = "update.releases"
)

var tracer = otel.Tracer("heavymetal.jobs")

// Persister receives the finished calendar, replacing the stored year
// completely or not at all.
type Persister interface {
	CreateOrReplaceYear(ctx context.Context, cal *calendar.Calendar) error
}

// Refresher rebuilds whatever was derived from the stored calendar.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Options struct {
	Wiki            wiki.Client
	Metallum        metallum.Client
	MetallumOptions metallum.Options
	// Bandcamp defaults to bandcamp.Disabled.
	Bandcamp bandcamp.Lookup
	Store    Persister
	Clock    chrono.API
	// Feed is refreshed after every stored update when set.
	Feed Refresher
}

type Updater struct {
	wiki         wiki.Client
	metallum     metallum.Client
	metallumOpts metallum.Options
	bandcamp     bandcamp.Lookup
	store        Persister
	feed         Refresher
	clock        chrono.API
	tel          telemetry.API

	releasesGauge metric.Int64Gauge
}

func NewUpdater(opts Options, tel telemetry.API) (Updater, error) {
	assert.NotNil(opts.Wiki)
	assert.NotNil(opts.Metallum)
	assert.NotNil(opts.Store)
	assert.NotNil(opts.Clock)
	assert.NotNil(tel)

	if opts.Bandcamp == nil {
		opts.Bandcamp = bandcamp.Disabled{}
	}

	releasesGauge, err := otel.Meter("heavymetal.jobs").Int64Gauge("calendar_releases")
	if err != nil {
		return Updater{}, err
	}

	return Updater{
		wiki:          opts.Wiki,
		metallum:      opts.Metallum,
		metallumOpts:  opts.MetallumOptions,
		bandcamp:      opts.Bandcamp,
		store:         opts.Store,
		feed:          opts.Feed,
		clock:         opts.Clock,
		tel:           telemetry.NewScopedAPI("jobs", tel),
		releasesGauge: releasesGauge,
	}, nil
}

// Scrape runs both scrapers concurrently and merges their calendars, the
// wiki's releases come first.
func (u Updater) Scrape(ctx context.Context, year int) (*calendar.Calendar, error) {
	var wikiCal, metallumCal *calendar.Calendar

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		cal, err := wiki.Scrape(groupCtx, u.wiki, year, u.tel)
		if err != nil {
			return fmt.Errorf("scrape wiki: %w", err)
		}
		wikiCal = cal
		return nil
	})
	group.Go(func() error {
		cal, err := metallum.Scrape(groupCtx, u.metallum, year, u.metallumOpts, u.tel)
		if err != nil {
			return fmt.Errorf("scrape metallum: %w", err)
		}
		metallumCal = cal
		return nil
	})
	err := group.Wait()
	if err != nil {
		return nil, err
	}

	for _, c := range calendar.Conflicts(wikiCal, metallumCal) {
		u.tel.ReportWarning(
			report_update_conflict,
			c.Kind.String(),
			fmt.Sprintf("%s (%s)", c.Left, c.LeftDate),
			fmt.Sprintf("%s (%s)", c.Right, c.RightDate),
			c.Similarity,
		)
	}

	return calendar.Merge(wikiCal, metallumCal), nil
}

// Enrich looks up the bandcamp page of every artist once.
func (u Updater) Enrich(ctx context.Context, cal *calendar.Calendar) *calendar.Calendar {
	if _, disabled := u.bandcamp.(bandcamp.Disabled); disabled {
		return cal
	}

	links := map[string]*url.URL{}
	return cal.Map(func(_ time.Month, _ int, release calendar.Release) calendar.Release {
		link, seen := links[release.Artist()]
		if !seen {
			found, ok := u.bandcamp.ArtistLink(ctx, release.Artist())
			if ok {
				link = found
			}
			links[release.Artist()] = link
		}
		return release.WithBandcamp(link)
	})
}

// Update scrapes, enriches and stores the calendar of year. On failure the
// stored calendar is left as it was.
func (u Updater) Update(ctx context.Context, year int) (*calendar.Calendar, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year))

	cal, err := u.Scrape(ctx, year)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	cal = u.Enrich(ctx, cal)

	err = u.store.CreateOrReplaceYear(ctx, cal)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("store calendar: %w", err)
	}

	if u.feed != nil {
		err = u.feed.Refresh(ctx)
		if err != nil {
			u.tel.ReportWarning(report_update_feed, err)
		}
	}

	u.releasesGauge.Record(ctx, int64(cal.Len()), metric.WithAttributes(attribute.Int("year", year)))
	u.tel.ReportCount(report_update_releases, int64(cal.Len()))
	return cal, nil
}

// UpdateCurrentYear is the scheduled job, failures are reported instead of
// returned.
func (u Updater) UpdateCurrentYear(ctx context.Context) {
	year := u.clock.Now().Year()
	start := time.Now()

	_, err := u.Update(ctx, year)
	if err != nil {
		u.tel.ReportBroken(report_update_done, err, year)
		return
	}
	u.tel.ReportDebug(report_update_done, year, time.Since(start).String())
}
