package wiki

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/errs"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// headerArtist is the artist column label of header rows repeated inside
// the tables.
const headerArtist = "Artist"

var rowSelector = cascadia.MustCompile("tbody tr")

func tableSelector(month time.Month) (cascadia.Selector, error) {
	return cascadia.Compile(fmt.Sprintf("table#table_%s", month))
}

// ExtractCalendar reads the per-month release tables of a wiki page.
//
// The page sometimes lists the end of October in a first table carrying
// November's id, so when exactly two November tables exist the first one
// belongs to October.
func ExtractCalendar(year int, doc *goquery.Document) (*calendar.Calendar, error) {
	cal := calendar.New(year)

	for month := time.January; month <= time.December; month++ {
		sel, err := tableSelector(month)
		if err != nil {
			return nil, fmt.Errorf("wiki: table selector for %s: %w: %w", month, errs.ErrScraperFail, err)
		}
		tables := doc.FindMatcher(sel)

		switch {
		case month == time.November && tables.Length() == 2:
			processTable(cal, time.October, tables.Eq(0))
			processTable(cal, time.November, tables.Eq(1))
		case tables.Length() == 1:
			processTable(cal, month, tables)
		}
	}

	return cal, nil
}

func cellText(cell *goquery.Selection) string {
	return strings.TrimSpace(cell.Text())
}

// processTable walks the rows of one table. A row's shape decides what it
// means:
//
//	1 cell:  [album]              another album by the current artist
//	2 cells: [artist, album]      a new artist on the current day
//	3 cells: [day, artist, album] a new day
//
// Any other shape is ignored. State starts over with every table.
func processTable(cal *calendar.Calendar, month time.Month, table *goquery.Selection) {
	currentDay := 1
	currentArtist := ""

	table.FindMatcher(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Children()

		switch cells.Length() {
		case 1:
			album := cellText(cells.Eq(0))
			cal.AddRelease(month, currentDay, calendar.NewRelease(currentArtist, album))
		case 2:
			currentArtist = cellText(cells.Eq(0))
			album := cellText(cells.Eq(1))
			cal.AddRelease(month, currentDay, calendar.NewRelease(currentArtist, album))
		case 3:
			// day cells are not always numbers (footnotes, "TBA"), keep the last good one
			day, err := strconv.Atoi(cellText(cells.Eq(0)))
			if err == nil {
				currentDay = day
			}

			currentArtist = cellText(cells.Eq(1))
			if currentArtist == headerArtist {
				return
			}
			album := cellText(cells.Eq(2))
			cal.AddRelease(month, currentDay, calendar.NewRelease(currentArtist, album))
		}
	})
}
