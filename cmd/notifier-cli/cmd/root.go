package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/scrapers/metallum"
	"heavymetal-notifier/internal/scrapers/wiki"
	"heavymetal-notifier/lib/restyutil"
	libtelemetry "heavymetal-notifier/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	fixtures  string
	dumpDir   string
	userAgent string
)

var tel telemetry.API = telemetry.SlogAPI{}

var rootCmd = &cobra.Command{
	Use:   "notifier-cli",
	Short: "notifier-cli runs the release calendar scrapers by hand.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
	rootCmd.PersistentFlags().StringVar(&fixtures, "fixtures", "", "Read pages from <dir>/wiki and <dir>/metallum instead of the network.")
	rootCmd.PersistentFlags().StringVar(&dumpDir, "dump", "", "Write every http exchange into this directory.")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "heavymetal-notifier/1.0", "User agent sent to the sources.")
}

func dumpOutput(source string) restyutil.Output {
	if dumpDir == "" {
		return nil
	}
	out, err := restyutil.NewFilesystemOutput(filepath.Join(dumpDir, source))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return out
}

func wikiClient() wiki.Client {
	if fixtures != "" {
		return wiki.FixtureClient{Dir: filepath.Join(fixtures, "wiki"), Tel: tel}
	}
	return wiki.NewHTTPClient(wiki.HTTPClientOptions{
		UserAgent: userAgent,
		Dump:      dumpOutput("wiki"),
	}, tel)
}

func metallumClient() metallum.Client {
	if fixtures != "" {
		return metallum.FixtureClient{Dir: filepath.Join(fixtures, "metallum"), Tel: tel}
	}
	return metallum.NewHTTPClient(metallum.HTTPClientOptions{
		UserAgent: userAgent,
		Dump:      dumpOutput("metallum"),
	}, tel)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
