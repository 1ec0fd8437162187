package cmd

import (
	"fmt"
	"log"
	"time"

	"heavymetal-notifier/cmd/notifier-cli/utils"
	"heavymetal-notifier/internal/components/chrono"
	"heavymetal-notifier/internal/feed"
	"heavymetal-notifier/internal/store"
	"heavymetal-notifier/internal/store/db"
	"heavymetal-notifier/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	feedDatabase string
	feedDate     string
	feedBaseUrl  string
	feedList     bool
)

func init() {
	feedCmd.Flags().StringVar(&feedDatabase, "db", "data/heavymetal.db", "Database to read releases from.")
	feedCmd.Flags().StringVar(&feedDate, "date", "", "Render the feed as if today was this date (YYYY-MM-DD).")
	feedCmd.Flags().StringVar(&feedBaseUrl, "base-url", "http://localhost", "Base url of the links in the feed.")
	feedCmd.Flags().BoolVar(&feedList, "releases", false, "Print the releases of the date as a table instead.")
	rootCmd.AddCommand(feedCmd)
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Renders the RSS feed from a database.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		now := time.Now().UTC()
		if feedDate != "" {
			parsed, err := time.Parse(time.DateOnly, feedDate)
			if err != nil {
				log.Fatal(err)
			}
			now = parsed
		}

		database, err := sqliteutil.OpenDB(db.Schema, feedDatabase)
		if err != nil {
			log.Fatal(err)
		}
		defer database.Close()
		s := store.NewStore(database)

		if feedList {
			releases, err := s.ReleasesOn(ctx, now)
			if err != nil {
				log.Fatal(err)
			}
			t := utils.NewTable()
			t.AppendHeader(table.Row{"Artist", "Album", "Type", "Genre", "Youtube"})
			for _, r := range releases {
				t.AppendRow(table.Row{r.Artist, r.Album, r.ReleaseType, r.Genre, r.YoutubeUrl})
			}
			t.Render()
			return
		}

		service := feed.NewService(s, chrono.FixedImpl{At: now}, tel, feedBaseUrl)
		out, err := service.Render(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)
	},
}
