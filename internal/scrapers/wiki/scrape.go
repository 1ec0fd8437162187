package wiki

import (
	"context"
	"fmt"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("heavymetal.scrapers.wiki")

const report_scrape_releases = "scrape.releases"

// Scrape fetches the wiki page of a year and extracts its calendar.
func Scrape(ctx context.Context, client Client, year int, tel telemetry.API) (*calendar.Calendar, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year))

	doc, err := client.Calendar(ctx, year)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	cal, err := ExtractCalendar(year, doc)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("wiki: extract %d: %w", year, err)
	}
	span.SetAttributes(attribute.Int("releases", cal.Len()))

	if tel != nil {
		tel.ReportCount(report_scrape_releases, int64(cal.Len()))
	}
	return cal, nil
}
