// Package feed republishes the releases of the day as an RSS feed.
package feed

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"heavymetal-notifier/internal/components/assert"
	"heavymetal-notifier/internal/components/chrono"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/store"

	"github.com/gorilla/feeds"
)

const (
	report_feed_today  = "feed.today"
	report_feed_render = "feed.render"
)

const (
	Title       = "Heavy Metal Releases"
	Description = "A feed for the latest heavy metal album releases."
	// MaxItems is how many days the feed goes back.
	MaxItems = 12

	FeedPath = "/calendar/feed.xml"
)

// Store is the part of store.Store the feed reads and caches into.
type Store interface {
	ReleasesOn(ctx context.Context, date time.Time) ([]store.StoredRelease, error)
	FeedOn(ctx context.Context, date time.Time) (store.Feed, bool, error)
	CreateFeed(ctx context.Context, feed store.Feed) error
	DeleteFeed(ctx context.Context, date time.Time) error
	LatestFeeds(ctx context.Context, n int) ([]store.Feed, error)
}

type Service struct {
	store   Store
	clock   chrono.API
	tel     telemetry.API
	baseUrl string
}

// NewService creates a feed service, baseUrl is the public address of the
// server used for links inside the feed.
func NewService(s Store, clock chrono.API, tel telemetry.API, baseUrl string) Service {
	assert.NotNil(s)
	assert.NotNil(clock)
	assert.NotNil(tel)
	return Service{
		store:   s,
		clock:   clock,
		tel:     telemetry.NewScopedAPI("feed", tel),
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
	}
}

// RenderContent lists releases as the HTML body of a feed item.
func RenderContent(releases []store.StoredRelease) string {
	var out strings.Builder
	for _, r := range releases {
		fmt.Fprintf(&out, "%s - %s<br/>", html.EscapeString(r.Artist), html.EscapeString(r.Album))
		fmt.Fprintf(&out, "&emsp;• <a href=\"%s\">Youtube</a><br/>", html.EscapeString(r.YoutubeUrl))
		if r.BandcampUrl != "" {
			fmt.Fprintf(&out, "&emsp;• <a href=\"%s\">Bandcamp</a><br/>", html.EscapeString(r.BandcampUrl))
		}
		out.WriteString("<br/>")
	}
	return out.String()
}

// ItemTitle formats a day like "October 15, 2024".
func ItemTitle(date time.Time) string {
	return date.Format("January 2, 2006")
}

// Today makes sure the feed of the current day is saved. Days without
// releases have no feed.
func (s Service) Today(ctx context.Context) error {
	now := s.clock.Now()

	_, ok, err := s.store.FeedOn(ctx, now)
	if err != nil {
		return fmt.Errorf("get feed: %w", err)
	}
	if ok {
		return nil
	}

	releases, err := s.store.ReleasesOn(ctx, now)
	if err != nil {
		return fmt.Errorf("get releases: %w", err)
	}
	if len(releases) == 0 {
		s.tel.ReportDebug(report_feed_today, "no releases", ItemTitle(now))
		return nil
	}

	err = s.store.CreateFeed(ctx, store.Feed{
		Date:    now,
		Content: RenderContent(releases),
	})
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	s.tel.ReportDebug(report_feed_today, "created feed", ItemTitle(now), len(releases))
	return nil
}

// Refresh rebuilds the feed of the current day from the stored releases,
// it runs after the calendar was replaced.
func (s Service) Refresh(ctx context.Context) error {
	err := s.store.DeleteFeed(ctx, s.clock.Now())
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return s.Today(ctx)
}

// Render returns the RSS document with the latest days.
func (s Service) Render(ctx context.Context) (string, error) {
	err := s.Today(ctx)
	if err != nil {
		// an older feed is still better than nothing
		s.tel.ReportBroken(report_feed_today, err)
	}

	saved, err := s.store.LatestFeeds(ctx, MaxItems)
	if err != nil {
		return "", fmt.Errorf("latest feeds: %w", err)
	}

	now := s.clock.Now()
	link := &feeds.Link{Href: s.baseUrl + FeedPath}
	out := &feeds.Feed{
		Title:       Title,
		Description: Description,
		Link:        link,
		Created:     now,
		Updated:     now,
	}
	for _, f := range saved {
		title := ItemTitle(f.Date)
		out.Items = append(out.Items, &feeds.Item{
			Id:          title,
			Title:       title,
			Link:        link,
			Description: f.Content,
			Content:     f.Content,
			Created:     f.Date,
		})
	}

	rss, err := out.ToRss()
	if err != nil {
		return "", fmt.Errorf("render rss: %w", err)
	}
	return rss, nil
}
