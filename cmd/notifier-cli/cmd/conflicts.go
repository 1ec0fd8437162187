package cmd

import (
	"fmt"
	"log"
	"time"

	"heavymetal-notifier/cmd/notifier-cli/utils"
	"heavymetal-notifier/internal/calendar"
	"heavymetal-notifier/internal/scrapers/metallum"
	"heavymetal-notifier/internal/scrapers/wiki"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var conflictsYear int

func init() {
	conflictsCmd.Flags().IntVar(&conflictsYear, "year", time.Now().Year(), "Year of the calendars.")
	rootCmd.AddCommand(conflictsCmd)
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Prints the releases the wiki and metallum disagree on.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		wikiCal, err := wiki.Scrape(ctx, wikiClient(), conflictsYear, tel)
		if err != nil {
			log.Fatal(err)
		}
		metallumCal, err := metallum.Scrape(ctx, metallumClient(), conflictsYear, metallum.Options{}, tel)
		if err != nil {
			log.Fatal(err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Kind", "Wiki", "Date", "Metallum", "Date", "Similarity"})
		for _, c := range calendar.Conflicts(wikiCal, metallumCal) {
			t.AppendRow(table.Row{
				c.Kind.String(),
				c.Left.String(),
				c.LeftDate.String(),
				c.Right.String(),
				c.RightDate.String(),
				fmt.Sprintf("%.3f", c.Similarity),
			})
		}
		t.Render()
	},
}
