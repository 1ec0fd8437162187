package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"heavymetal-notifier/cmd/notifier-cli/utils"
	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/components/chrono"
	"heavymetal-notifier/internal/jobs"
	"heavymetal-notifier/internal/scrapers/bandcamp"
	"heavymetal-notifier/internal/scrapers/metallum"
	"heavymetal-notifier/internal/scrapers/wiki"
	"heavymetal-notifier/internal/store"
	"heavymetal-notifier/internal/store/db"
	"heavymetal-notifier/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeYear     int
	scrapeSource   string
	scrapeMaxPages int
	scrapeDatabase string
	scrapeBandcamp bool
)

func init() {
	scrapeCmd.Flags().IntVar(&scrapeYear, "year", time.Now().Year(), "Year of the calendar.")
	scrapeCmd.Flags().StringVar(&scrapeSource, "source", "all", "One of 'wiki', 'metallum' or 'all'.")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", metallum.DefaultMaxPages, "Maximum number of metallum pages to fetch.")
	scrapeCmd.Flags().StringVar(&scrapeDatabase, "db", "", "Replace the year in this database with the merged calendar.")
	scrapeCmd.Flags().BoolVar(&scrapeBandcamp, "bandcamp", false, "Look up the bandcamp page of every artist.")
	rootCmd.AddCommand(scrapeCmd)
}

// discard is the persister used when no database is given.
type discard struct{}

func (discard) CreateOrReplaceYear(context.Context, *calendar.Calendar) error {
	return nil
}

func newUpdater(persister jobs.Persister) (jobs.Updater, error) {
	var lookup bandcamp.Lookup = bandcamp.Disabled{}
	if scrapeBandcamp {
		lookup = bandcamp.NewHTTPLookup(bandcamp.HTTPLookupOptions{
			UserAgent: userAgent,
			Dump:      dumpOutput("bandcamp"),
		}, tel)
	}
	return jobs.NewUpdater(jobs.Options{
		Wiki:            wikiClient(),
		Metallum:        metallumClient(),
		MetallumOptions: metallum.Options{MaxPages: scrapeMaxPages},
		Bandcamp:        lookup,
		Store:           persister,
		Clock:           chrono.FixedImpl{At: time.Now()},
	}, tel)
}

func scrapeAll(ctx context.Context) (*calendar.Calendar, error) {
	if scrapeDatabase == "" {
		updater, err := newUpdater(discard{})
		if err != nil {
			return nil, err
		}
		cal, err := updater.Scrape(ctx, scrapeYear)
		if err != nil {
			return nil, err
		}
		return updater.Enrich(ctx, cal), nil
	}

	database, err := sqliteutil.OpenDB(db.Schema, scrapeDatabase)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	updater, err := newUpdater(store.NewStore(database))
	if err != nil {
		return nil, err
	}
	return updater.Update(ctx, scrapeYear)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the release calendar of a year and prints it.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		var cal *calendar.Calendar
		var err error
		switch scrapeSource {
		case "wiki":
			cal, err = wiki.Scrape(ctx, wikiClient(), scrapeYear, tel)
		case "metallum":
			cal, err = metallum.Scrape(ctx, metallumClient(), scrapeYear, metallum.Options{
				MaxPages: scrapeMaxPages,
			}, tel)
		case "all":
			cal, err = scrapeAll(ctx)
		default:
			log.Fatalf("unknown source '%s'", scrapeSource)
		}
		if err != nil {
			log.Fatal(err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Date", "Artist", "Album", "Type", "Genre", "Bandcamp"})
		cal.Each(func(month time.Month, day int, release calendar.Release) {
			info, _ := release.Metallum()
			t.AppendRow(table.Row{
				calendar.Date{Month: month, Day: day}.String(),
				release.Artist(),
				release.Album(),
				info.ReleaseType,
				info.Genre,
				release.Links().Bandcamp,
			})
		})
		t.AppendFooter(table.Row{"", "", "", "", "Total", fmt.Sprint(cal.Len())})
		t.Render()
	},
}
