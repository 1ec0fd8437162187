// Package store persists calendars and generated feeds in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/store/db"
)

type Store struct {
	qry    *db.Queries
	makeTx db.MakeTx
}

// NewStore expects database to already have db.Schema applied.
func NewStore(database *sql.DB) Store {
	return Store{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateOrReplaceYear replaces every release of the calendar's year with
// the calendar's releases. Either all of it is written or nothing is.
func (s Store) CreateOrReplaceYear(ctx context.Context, cal *calendar.Calendar) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = tx.DeleteReleasesOfYear(ctx, int64(cal.Year))
	if err != nil {
		return fmt.Errorf("delete releases of %d: %w", cal.Year, err)
	}

	for month := time.January; month <= time.December; month++ {
		for _, day := range cal.Days(month) {
			for _, release := range cal.Releases(month, day) {
				err = createRelease(ctx, tx, cal.Year, month, day, release)
				if err != nil {
					return fmt.Errorf("create release %s: %w", release, err)
				}
			}
		}
	}

	return commit()
}

func createRelease(ctx context.Context, tx *db.Queries, year int, month time.Month, day int, release calendar.Release) error {
	info, _ := release.Metallum()
	links := release.Links()

	artistId, err := tx.UpsertArtist(ctx, db.UpsertArtistParams{
		Name:        release.Artist(),
		Genre:       nullString(info.Genre),
		UrlBandcamp: nullString(links.Bandcamp),
		UrlMetallum: nullString(info.ArtistLink),
	})
	if err != nil {
		return err
	}

	return tx.CreateRelease(ctx, db.CreateReleaseParams{
		Year:        int64(year),
		Month:       int64(month),
		Day:         int64(day),
		ArtistID:    artistId,
		Album:       release.Album(),
		ReleaseType: nullString(info.ReleaseType),
		UrlYoutube:  links.Youtube,
		UrlMetallum: nullString(info.AlbumLink),
	})
}

// StoredRelease is a release as read back from the database.
type StoredRelease struct {
	Artist            string
	Album             string
	ReleaseType       string
	Genre             string
	YoutubeUrl        string
	BandcampUrl       string
	ArtistMetallumUrl string
	AlbumMetallumUrl  string
}

// ReleasesOn returns the releases on the calendar day of date in insertion
// order.
func (s Store) ReleasesOn(ctx context.Context, date time.Time) ([]StoredRelease, error) {
	rows, err := s.qry.GetReleasesOn(ctx, db.GetReleasesOnParams{
		Year:  int64(date.Year()),
		Month: int64(date.Month()),
		Day:   int64(date.Day()),
	})
	if err != nil {
		return nil, err
	}

	out := make([]StoredRelease, len(rows))
	for i, r := range rows {
		out[i] = StoredRelease{
			Artist:            r.Artist,
			Album:             r.Album,
			ReleaseType:       r.ReleaseType.String,
			Genre:             r.Genre.String,
			YoutubeUrl:        r.UrlYoutube,
			BandcampUrl:       r.UrlBandcamp.String,
			ArtistMetallumUrl: r.ArtistUrlMetallum.String,
			AlbumMetallumUrl:  r.AlbumUrlMetallum.String,
		}
	}
	return out, nil
}

func (s Store) CountReleases(ctx context.Context, year int) (int64, error) {
	return s.qry.CountReleasesOfYear(ctx, int64(year))
}

// Feed is the rendered feed item of a day.
type Feed struct {
	// Date only keeps year, month and day, always UTC.
	Date    time.Time
	Content string
}

func dateKey(t time.Time) int64 {
	return int64(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

func fromDateKey(key int64) time.Time {
	return time.Date(int(key/10000), time.Month(key/100%100), int(key%100), 0, 0, 0, 0, time.UTC)
}

// CreateFeed saves the feed of a day, it is a no-op if that day already has
// one.
func (s Store) CreateFeed(ctx context.Context, feed Feed) error {
	return s.qry.CreateFeed(ctx, db.CreateFeedParams{
		Date: dateKey(feed.Date),
		Feed: feed.Content,
	})
}

// DeleteFeed forgets the saved feed of a day.
func (s Store) DeleteFeed(ctx context.Context, date time.Time) error {
	return s.qry.DeleteFeed(ctx, dateKey(date))
}

// FeedOn returns the saved feed of a day if there is one.
func (s Store) FeedOn(ctx context.Context, date time.Time) (Feed, bool, error) {
	row, err := s.qry.GetFeed(ctx, dateKey(date))
	if errors.Is(err, sql.ErrNoRows) {
		return Feed{}, false, nil
	}
	if err != nil {
		return Feed{}, false, err
	}
	return Feed{Date: fromDateKey(row.Date), Content: row.Feed}, true, nil
}

// LatestFeeds returns at most n feeds, newest first.
func (s Store) LatestFeeds(ctx context.Context, n int) ([]Feed, error) {
	rows, err := s.qry.GetLatestFeeds(ctx, int64(n))
	if err != nil {
		return nil, err
	}
	out := make([]Feed, len(rows))
	for i, r := range rows {
		out[i] = Feed{Date: fromDateKey(r.Date), Content: r.Feed}
	}
	return out, nil
}
