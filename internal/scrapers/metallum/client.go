package metallum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"heavymetal-notifier/internal/components/assert"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/errs"
	"heavymetal-notifier/lib/restyutil"
	libtelemetry "heavymetal-notifier/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_page  = "client.page"
	report_fixture_page = "fixture.page"
)

const (
	DefaultBaseUrl = "https://www.metal-archives.com"
	PageSize       = 100

	searchEndpoint = "/search/ajax-advanced/searching/albums/"
)

// Client fetches one page of a year's album search. An empty page means
// there is nothing left.
type Client interface {
	Page(ctx context.Context, year, page int) ([]Record, error)
}

// searchPage is the body returned by the album search.
type searchPage struct {
	Error               string     `json:"error"`
	TotalRecords        int        `json:"iTotalRecords"`
	TotalDisplayRecords int        `json:"iTotalDisplayRecords"`
	Echo                int        `json:"sEcho"`
	Data                [][]string `json:"aaData"`
}

func decodePage(body []byte) ([]Record, error) {
	var page searchPage
	err := json.Unmarshal(body, &page)
	if err != nil {
		return nil, err
	}
	if page.Error != "" {
		return nil, errors.New(page.Error)
	}
	records := make([]Record, len(page.Data))
	for i, fields := range page.Data {
		records[i] = recordFromFields(fields)
	}
	return records, nil
}

type HTTPClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl           string
	UserAgent         string
	Timeout           time.Duration
	// RequestsPerSecond defaults to 1.
	RequestsPerSecond float64
	// Dump receives a copy of every exchange when set.
	Dump              restyutil.Output
}

// HTTPClient queries the live album search. It is lenient: a page that
// cannot be fetched is reported and treated as the end of the data.
type HTTPClient struct {
	http *resty.Client
	tel  telemetry.API
}

func NewHTTPClient(opts HTTPClientOptions, tel telemetry.API) HTTPClient {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("metallum_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}
	httpClient.SetHeader("x-requested-with", "XMLHttpRequest")

	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Dump(httpClient, opts.Dump)
	libtelemetry.TraceResty(httpClient, "heavymetal.scrapers.metallum")

	return HTTPClient{http: httpClient, tel: tel}
}

func (c HTTPClient) Page(ctx context.Context, year, page int) ([]Record, error) {
	yearStr := strconv.Itoa(year)
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"bandName":         "",
			"releaseTitle":     "",
			"releaseYearFrom":  yearStr,
			"releaseMonthFrom": "1",
			"releaseYearTo":    yearStr,
			"releaseMonthTo":   "12",
			"sEcho":            strconv.Itoa(page + 1),
			"iColumns":         "6",
			"iDisplayStart":    strconv.Itoa(page * PageSize),
			"iDisplayLength":   strconv.Itoa(PageSize),
		}).
		Get(searchEndpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.tel.ReportBroken(report_client_page, fmt.Errorf("fetch: %w", err), year, page)
		return nil, nil
	}
	if res.IsError() {
		c.tel.ReportWarning(report_client_page, "unexpected status", res.Status(), year, page)
		return nil, nil
	}

	records, err := decodePage(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_page, fmt.Errorf("decode: %w", err), year, page)
		return nil, fmt.Errorf("metallum: page %d of %d: %w: %w", page, year, errs.ErrScraperFail, err)
	}
	return records, nil
}

// FixtureClient reads pages saved as "<dir>/<year>_<page>.json", a missing
// file is an empty page.
type FixtureClient struct {
	Dir string
	Tel telemetry.API
}

func FixturePath(dir string, year, page int) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%d.json", year, page))
}

func (c FixtureClient) Page(_ context.Context, year, page int) ([]Record, error) {
	path := FixturePath(c.Dir, year, page)
	if c.Tel != nil {
		c.Tel.ReportDebug(report_fixture_page, path)
	}

	body, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metallum: open fixture %s: %w: %w", path, errs.ErrRequestFail, err)
	}

	records, err := decodePage(body)
	if err != nil {
		return nil, fmt.Errorf("metallum: fixture %s: %w: %w", path, errs.ErrScraperFail, err)
	}
	return records, nil
}
