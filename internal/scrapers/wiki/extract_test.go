package wiki

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/errs"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, content string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func releaseStrings(releases []calendar.Release) []string {
	out := make([]string, len(releases))
	for i, r := range releases {
		out[i] = r.String()
	}
	return out
}

func TestExtractCalendarContinuationRow(t *testing.T) {
	doc := parseDoc(t, `<table id="table_October"><tbody>
		<tr><td>15</td><td>Grave Digger</td><td>Bone Collector</td></tr>
		<tr><td>Another Album</td></tr>
	</tbody></table>`)

	cal, err := ExtractCalendar(2024, doc)
	require.NoError(t, err)

	require.Equal(t, []string{
		"Grave Digger - Bone Collector",
		"Grave Digger - Another Album",
	}, releaseStrings(cal.Releases(time.October, 15)))
	require.Equal(t, 2, cal.Len())
}

func TestExtractCalendarMalformedDay(t *testing.T) {
	doc := parseDoc(t, `<table id="table_May"><tbody>
		<tr><td>10</td><td>Kerry King</td><td>From Hell I Rise</td></tr>
		<tr><td>n/a</td><td>Bruce Dickinson</td><td>The Mandrake Project</td></tr>
	</tbody></table>`)

	cal, err := ExtractCalendar(2024, doc)
	require.NoError(t, err)

	require.Equal(t, []string{
		"Kerry King - From Hell I Rise",
		"Bruce Dickinson - The Mandrake Project",
	}, releaseStrings(cal.Releases(time.May, 10)))
}

func TestExtractCalendarHeaderRowSkipped(t *testing.T) {
	doc := parseDoc(t, `<table id="table_June"><tbody>
		<tr><td>Day</td><td> Artist </td><td>Album</td></tr>
	</tbody></table>`)

	cal, err := ExtractCalendar(2024, doc)
	require.NoError(t, err)
	require.Equal(t, 0, cal.Len())
}

func TestExtractCalendarDayDefaultsToFirst(t *testing.T) {
	doc := parseDoc(t, `<table id="table_July"><tbody>
		<tr><td>Dool</td><td>The Shape of Fluidity</td></tr>
	</tbody></table>`)

	cal, err := ExtractCalendar(2024, doc)
	require.NoError(t, err)
	require.Equal(t, []string{"Dool - The Shape of Fluidity"}, releaseStrings(cal.Releases(time.July, 1)))
}

func TestExtractCalendarStateResetsPerTable(t *testing.T) {
	doc := parseDoc(t, `
	<table id="table_November"><tbody>
		<tr><td>25</td><td>Grave Digger</td><td>Bone Collector</td></tr>
	</tbody></table>
	<table id="table_November"><tbody>
		<tr><td>Sepultura</td><td>Chaosphere</td></tr>
		<tr><td>Dead Album</td></tr>
	</tbody></table>`)

	cal, err := ExtractCalendar(2024, doc)
	require.NoError(t, err)

	require.Equal(t, []string{"Grave Digger - Bone Collector"}, releaseStrings(cal.Releases(time.October, 25)))
	require.Equal(t, []string{"Sepultura - Chaosphere", "Sepultura - Dead Album"}, releaseStrings(cal.Releases(time.November, 1)))
	require.Nil(t, cal.Releases(time.November, 25))
}

func TestExtractCalendarSkipsAmbiguousTables(t *testing.T) {
	doc := parseDoc(t, `
	<table id="table_April"><tbody><tr><td>1</td><td>A</td><td>a</td></tr></tbody></table>
	<table id="table_April"><tbody><tr><td>2</td><td>B</td><td>b</td></tr></tbody></table>
	<table id="table_November"><tbody><tr><td>1</td><td>C</td><td>c</td></tr></tbody></table>
	<table id="table_November"><tbody><tr><td>2</td><td>D</td><td>d</td></tr></tbody></table>
	<table id="table_November"><tbody><tr><td>3</td><td>E</td><td>e</td></tr></tbody></table>`)

	cal, err := ExtractCalendar(2024, doc)
	require.NoError(t, err)
	require.Equal(t, 0, cal.Len())
}

func TestScrapeFixture(t *testing.T) {
	tel := telemetry.NewRecordingAPI()
	cal, err := Scrape(context.Background(), FixtureClient{Dir: "testdata"}, 2024, tel)
	require.NoError(t, err)
	require.Equal(t, 2024, cal.Year)

	expected := map[calendar.Date][]string{
		{Month: time.January, Day: 5}: {
			"Hanabie. - Reborn Superstar!",
			"Infected Rain - Time",
			"Infected Rain - Sieben (EP)",
		},
		{Month: time.January, Day: 12}: {
			"Brothers of Metal - Fimbulvinter",
			"Hanging Garden - The Garden",
		},
		{Month: time.March, Day: 1}: {
			"Saxon - Hell, Fire and Damnation",
			"Judas Priest - Invincible Shield",
		},
		{Month: time.March, Day: 8}: {
			"Kryptos - Decimator",
		},
		{Month: time.March, Day: 15}: {
			"Kanonenfieber - Die Urkatastrophe",
		},
		{Month: time.October, Day: 4}: {
			"Opeth - The Last Will and Testament",
		},
		{Month: time.October, Day: 25}: {
			"Grave Digger - Bone Collector",
			"Grave Digger - Another Album",
		},
		{Month: time.November, Day: 1}: {
			"Sepultura - Chaosphere (reissue)",
		},
		{Month: time.November, Day: 8}: {
			"Wintersun - Time II",
		},
	}

	total := 0
	for date, releases := range expected {
		require.Equal(t, releases, releaseStrings(cal.Releases(date.Month, date.Day)), date.String())
		total += len(releases)
	}
	require.Equal(t, total, cal.Len())

	counts := tel.Reports("count", report_scrape_releases)
	require.Len(t, counts, 1)
	require.Equal(t, int64(total), counts[0].Count)
}

func TestScrapeMissingFixture(t *testing.T) {
	_, err := Scrape(context.Background(), FixtureClient{Dir: "testdata"}, 1970, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrRequestFail))
}
