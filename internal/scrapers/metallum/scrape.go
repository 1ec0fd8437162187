package metallum

import (
	"context"
	"errors"
	"fmt"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("heavymetal.scrapers.metallum")

const (
	report_scrape_page_cap = "scrape.page-cap"
	report_scrape_record   = "scrape.record"
	report_scrape_releases = "scrape.releases"
)

const DefaultMaxPages = 500

type Options struct {
	// MaxPages bounds how many pages are requested for a year, defaults to
	// DefaultMaxPages.
	MaxPages int
}

// Scrape requests pages starting from 0 until one comes back empty and adds
// every record to a calendar of the year. A record whose date cannot be
// parsed (like "November 2024", a day the source does not know yet) is
// reported and skipped, any other decode failure aborts the scrape.
func Scrape(ctx context.Context, client Client, year int, opts Options, tel telemetry.API) (*calendar.Calendar, error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year))

	cal := calendar.New(year)
	for page := 0; ; page++ {
		if page >= opts.MaxPages {
			if tel != nil {
				tel.ReportWarning(report_scrape_page_cap, year, opts.MaxPages)
			}
			break
		}

		records, err := client.Page(ctx, year, page)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if len(records) == 0 {
			span.SetAttributes(attribute.Int("pages", page))
			break
		}

		for i, record := range records {
			parts, err := DecodeRecord(ctx, record)
			if errors.Is(err, errs.ErrParseFail) {
				if tel != nil {
					tel.ReportWarning(report_scrape_record, page, i, err)
				}
				continue
			}
			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				return nil, fmt.Errorf("metallum: page %d record %d: %w", page, i, err)
			}
			cal.AddRelease(parts.Date.Month(), parts.Date.Day(), parts.Release())
		}
	}

	span.SetAttributes(attribute.Int("releases", cal.Len()))
	if tel != nil {
		tel.ReportCount(report_scrape_releases, int64(cal.Len()))
	}
	return cal, nil
}
