// Package bandcamp guesses the bandcamp page of an artist.
package bandcamp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"heavymetal-notifier/internal/components/assert"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/lib/restyutil"
	libtelemetry "heavymetal-notifier/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_lookup_artist_link = "lookup.artist-link"
)

// Lookup finds the bandcamp page of an artist, it is best effort.
type Lookup interface {
	ArtistLink(ctx context.Context, artist string) (*url.URL, bool)
}

// Disabled never finds anything.
type Disabled struct{}

func (Disabled) ArtistLink(context.Context, string) (*url.URL, bool) {
	return nil, false
}

// Slug turns an artist name into the subdomain bandcamp would most likely
// give it: lowercase, colons and whitespace removed.
func Slug(artist string) string {
	artist = strings.ToLower(artist)
	artist = strings.ReplaceAll(artist, ":", "")
	return strings.Join(strings.Fields(artist), "")
}

func defaultArtistUrl(slug string) string {
	return fmt.Sprintf("https://%s.bandcamp.com", slug)
}

type HTTPLookupOptions struct {
	// ArtistUrl builds the page to probe from a slug, defaults to
	// "https://<slug>.bandcamp.com".
	ArtistUrl func(slug string) string
	// Delay is the minimum time between two probes, defaults to 100ms.
	Delay     time.Duration
	Timeout   time.Duration
	UserAgent string
	// Dump receives a copy of every exchange when set.
	Dump      restyutil.Output
}

// HTTPLookup probes the artist's bandcamp subdomain. Unknown subdomains
// redirect to the signup page.
type HTTPLookup struct {
	http      *resty.Client
	artistUrl func(slug string) string
	tel       telemetry.API
}

func NewHTTPLookup(opts HTTPLookupOptions, tel telemetry.API) HTTPLookup {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("bandcamp", tel)

	if opts.ArtistUrl == nil {
		opts.ArtistUrl = defaultArtistUrl
	}
	if opts.Delay == 0 {
		opts.Delay = time.Millisecond * 100
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 10
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}

	rateLimiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.Dump(httpClient, opts.Dump)
	libtelemetry.TraceResty(httpClient, "heavymetal.scrapers.bandcamp")

	return HTTPLookup{
		http:      httpClient,
		artistUrl: opts.ArtistUrl,
		tel:       tel,
	}
}

func (l HTTPLookup) ArtistLink(ctx context.Context, artist string) (*url.URL, bool) {
	slug := Slug(artist)
	if slug == "" {
		return nil, false
	}

	link, err := url.Parse(l.artistUrl(slug))
	if err != nil {
		l.tel.ReportWarning(report_lookup_artist_link, fmt.Errorf("parse url: %w", err), artist)
		return nil, false
	}

	res, err := l.http.R().
		SetContext(ctx).
		Get(link.String())
	if err != nil {
		l.tel.ReportDebug(report_lookup_artist_link, "probe failed", artist, err)
		return nil, false
	}

	final := res.RawResponse.Request.URL
	if final.Path == "/signup" && final.Host != link.Host {
		return nil, false
	}
	return link, true
}
