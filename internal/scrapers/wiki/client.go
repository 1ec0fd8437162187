package wiki

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"heavymetal-notifier/internal/components/assert"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/errs"
	"heavymetal-notifier/lib/restyutil"
	libtelemetry "heavymetal-notifier/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_calendar  = "client.calendar"
	report_fixture_calendar = "fixture.calendar"
)

// DefaultBaseUrl is where the "<year> in heavy metal music" pages live.
const DefaultBaseUrl = "https://en.wikipedia.org/wiki"

// Client fetches the wiki page listing a year's releases.
type Client interface {
	Calendar(ctx context.Context, year int) (*goquery.Document, error)
}

type HTTPClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// Dump receives a copy of every exchange when set.
	Dump      restyutil.Output
}

// HTTPClient fetches the live wiki page.
type HTTPClient struct {
	http *resty.Client
	tel  telemetry.API
}

func NewHTTPClient(opts HTTPClientOptions, tel telemetry.API) HTTPClient {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("wiki_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}
	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Dump(httpClient, opts.Dump)
	libtelemetry.TraceResty(httpClient, "heavymetal.scrapers.wiki")

	return HTTPClient{http: httpClient, tel: tel}
}

func (c HTTPClient) Calendar(ctx context.Context, year int) (*goquery.Document, error) {
	endpoint := fmt.Sprintf("/%d_in_heavy_metal_music", year)
	c.tel.ReportDebug(report_client_calendar, endpoint)

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_calendar,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		return nil, fmt.Errorf("wiki: fetch %d: %w: %w", year, errs.ErrRequestFail, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("wiki: fetch %d: status %s: %w", year, res.Status(), errs.ErrRequestFail)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_calendar,
			fmt.Errorf("parse: %w", err),
			endpoint,
		)
		return nil, fmt.Errorf("wiki: parse %d: %w: %w", year, errs.ErrScraperFail, err)
	}
	return doc, nil
}

// FixtureClient reads pages saved as "<dir>/<year>.html".
type FixtureClient struct {
	Dir string
	Tel telemetry.API
}

func (c FixtureClient) Calendar(_ context.Context, year int) (*goquery.Document, error) {
	path := filepath.Join(c.Dir, fmt.Sprintf("%d.html", year))
	if c.Tel != nil {
		c.Tel.ReportDebug(report_fixture_calendar, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wiki: open fixture %s: %w: %w", path, errs.ErrRequestFail, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("wiki: parse fixture %s: %w: %w", path, errs.ErrScraperFail, err)
	}
	return doc, nil
}
