package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/components/chrono"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/store"
	"heavymetal-notifier/internal/store/db"
	"heavymetal-notifier/lib/sqliteutil"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) store.Store {
	database, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return store.NewStore(database)
}

func seed(t *testing.T, s store.Store) {
	cal := calendar.New(2024)
	cal.AddRelease(time.October, 15, calendar.NewRelease("Grave Digger", "Bone Collector"))
	cal.AddRelease(time.October, 15, calendar.NewRelease("Grave Digger", "Another Album"))
	cal.AddRelease(time.October, 16, calendar.NewRelease("Saxon & Friends", "<Live>"))
	require.NoError(t, s.CreateOrReplaceYear(context.Background(), cal))
}

func parse(t *testing.T, rss string) *gofeed.Feed {
	parsed, err := gofeed.NewParser().ParseString(rss)
	require.NoError(t, err)
	return parsed
}

func TestRenderContent(t *testing.T) {
	content := RenderContent([]store.StoredRelease{
		{Artist: "Grave Digger", Album: "Bone Collector", YoutubeUrl: "https://yt/1", BandcampUrl: "https://gravedigger.bandcamp.com"},
		{Artist: "A & B", Album: "<C>", YoutubeUrl: "https://yt/2"},
	})

	require.Equal(t,
		`Grave Digger - Bone Collector<br/>`+
			`&emsp;• <a href="https://yt/1">Youtube</a><br/>`+
			`&emsp;• <a href="https://gravedigger.bandcamp.com">Bandcamp</a><br/>`+
			`<br/>`+
			`A &amp; B - &lt;C&gt;<br/>`+
			`&emsp;• <a href="https://yt/2">Youtube</a><br/>`+
			`<br/>`,
		content,
	)
	require.Equal(t, "", RenderContent(nil))
}

func TestItemTitle(t *testing.T) {
	require.Equal(t, "October 15, 2024", ItemTitle(time.Date(2024, time.October, 15, 22, 0, 0, 0, time.UTC)))
}

func TestRenderCachesPerDay(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()
	tel := telemetry.NewRecordingAPI()

	day := chrono.FixedImpl{At: time.Date(2024, time.October, 15, 9, 0, 0, 0, time.UTC)}
	service := NewService(s, day, tel, "https://metal.example.com/")

	rss, err := service.Render(ctx)
	require.NoError(t, err)

	parsed := parse(t, rss)
	require.Equal(t, Title, parsed.Title)
	require.Equal(t, Description, parsed.Description)
	require.Equal(t, "https://metal.example.com/calendar/feed.xml", parsed.Link)
	require.Len(t, parsed.Items, 1)
	require.Equal(t, "October 15, 2024", parsed.Items[0].Title)
	require.Equal(t, "October 15, 2024", parsed.Items[0].GUID)
	require.True(t, strings.HasPrefix(parsed.Items[0].Content, "Grave Digger - Bone Collector<br/>"))
	require.Contains(t, parsed.Items[0].Content, "Grave Digger - Another Album<br/>")

	// the day's item is not rebuilt once saved
	replacement := calendar.New(2024)
	replacement.AddRelease(time.October, 15, calendar.NewRelease("Opeth", "The Last Will and Testament"))
	require.NoError(t, s.CreateOrReplaceYear(ctx, replacement))

	rss, err = service.Render(ctx)
	require.NoError(t, err)
	parsed = parse(t, rss)
	require.Len(t, parsed.Items, 1)
	require.NotContains(t, parsed.Items[0].Content, "Opeth")
}

func TestRefreshRebuildsToday(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()

	day := chrono.FixedImpl{At: time.Date(2024, time.October, 15, 9, 0, 0, 0, time.UTC)}
	service := NewService(s, day, telemetry.NewRecordingAPI(), "")
	require.NoError(t, service.Today(ctx))

	replacement := calendar.New(2024)
	replacement.AddRelease(time.October, 15, calendar.NewRelease("Opeth", "The Last Will and Testament"))
	require.NoError(t, s.CreateOrReplaceYear(ctx, replacement))

	require.NoError(t, service.Refresh(ctx))
	saved, ok, err := s.FeedOn(ctx, day.Now())
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(saved.Content, "Opeth - The Last Will and Testament<br/>"))
	require.NotContains(t, saved.Content, "Grave Digger")

	// a day that lost its releases loses its item
	require.NoError(t, s.CreateOrReplaceYear(ctx, calendar.New(2024)))
	require.NoError(t, service.Refresh(ctx))
	_, ok, err = s.FeedOn(ctx, day.Now())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRenderNewestFirst(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	ctx := context.Background()
	tel := telemetry.NewRecordingAPI()

	for _, at := range []time.Time{
		time.Date(2024, time.October, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.October, 16, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.October, 17, 9, 0, 0, 0, time.UTC),
	} {
		_, err := NewService(s, chrono.FixedImpl{At: at}, tel, "").Render(ctx)
		require.NoError(t, err)
	}

	feeds, err := s.LatestFeeds(ctx, MaxItems)
	require.NoError(t, err)
	require.Len(t, feeds, 2)

	rss, err := NewService(s, chrono.FixedImpl{At: time.Date(2024, time.October, 17, 9, 0, 0, 0, time.UTC)}, tel, "").Render(ctx)
	require.NoError(t, err)
	parsed := parse(t, rss)
	require.Len(t, parsed.Items, 2)
	require.Equal(t, "October 16, 2024", parsed.Items[0].Title)
	require.Equal(t, "Saxon &amp; Friends - &lt;Live&gt;<br/>", strings.SplitAfter(parsed.Items[0].Content, "<br/>")[0])
	require.Equal(t, "October 15, 2024", parsed.Items[1].Title)
}

func TestRenderCapsItems(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	for day := 1; day <= MaxItems+5; day++ {
		require.NoError(t, s.CreateFeed(ctx, store.Feed{
			Date:    time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
			Content: "x",
		}))
	}

	service := NewService(s, chrono.FixedImpl{At: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}, telemetry.NewRecordingAPI(), "")
	rss, err := service.Render(ctx)
	require.NoError(t, err)
	require.Len(t, parse(t, rss).Items, MaxItems)
}

func TestHandler(t *testing.T) {
	s := openStore(t)
	seed(t, s)
	service := NewService(s, chrono.FixedImpl{At: time.Date(2024, time.October, 15, 9, 0, 0, 0, time.UTC)}, telemetry.NewRecordingAPI(), "")

	mux := http.NewServeMux()
	service.Register(mux)

	for _, path := range []string{"/feed.xml", "/calendar/feed.xml"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, ContentType, rec.Header().Get("content-type"))
		require.Len(t, parse(t, rec.Body.String()).Items, 1)
	}

	req := httptest.NewRequest(http.MethodPost, "/feed.xml", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type brokenStore struct {
	store.Store
}

func (brokenStore) LatestFeeds(context.Context, int) ([]store.Feed, error) {
	return nil, errors.New("disk on fire")
}

func TestHandlerStoreFailure(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	service := NewService(brokenStore{Store: openStore(t)}, chrono.FixedImpl{At: time.Now()}, tel, "")

	rec := httptest.NewRecorder()
	service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed.xml", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, tel.Reports("broken", report_feed_render), 1)
}
