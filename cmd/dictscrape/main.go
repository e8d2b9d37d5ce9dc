package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/go-scripts/dictscrape/internal/browser"
	"github.com/go-scripts/dictscrape/internal/config"
	"github.com/go-scripts/dictscrape/internal/progress"
	"github.com/go-scripts/dictscrape/internal/scraper"
)

var cli struct {
	Library string `arg:"" help:"Name of the library to extract (e.g. DAD)."`
	Dataset string `arg:"" help:"Name of the dataset to extract."`
	Date    string `short:"d" help:"ISO date (YYYY-MM-DD) for the default output filename. Defaults to today."`
	Output  string `short:"o" help:"Output CSV path. Derived from library, dataset and date when omitted." type:"path"`
	Headed  bool   `help:"Run the browser visibly."`
	Config  string `help:"Path to a YAML settings file." type:"path"`
}

// datasetSanitizer replaces characters that make awkward filenames.
var datasetSanitizer = strings.NewReplacer(" ", "-", ":", "-")

// deriveOutputPath builds the default {library}__{dataset}__{date}.csv
// output name.
func deriveOutputPath(library, dataset string, date time.Time) string {
	return fmt.Sprintf("%s__%s__%s.csv", library, datasetSanitizer.Replace(dataset), date.Format("2006-01-02"))
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func main() {
	kong.Parse(&cli,
		kong.Name("dictscrape"),
		kong.Description("Extracts variable metadata from a web data dictionary into a resumable CSV."),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "dictscrape",
	})

	date, err := parseDate(cli.Date)
	if err != nil {
		logger.Error("invalid date, use YYYY-MM-DD", "date", cli.Date)
		os.Exit(1)
	}

	output := cli.Output
	if output == "" {
		output = deriveOutputPath(cli.Library, cli.Dataset, date)
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		logger.Error("could not load settings", "path", cli.Config, "err", err)
		os.Exit(1)
	}

	logger.Info("starting extraction",
		"library", cli.Library,
		"dataset", cli.Dataset,
		"output", output,
		"headed", cli.Headed)

	session, err := browser.NewSession(browser.Options{
		Headed:      cli.Headed,
		StepTimeout: cfg.StepTimeout.Std(),
	})
	if err != nil {
		logger.Error("could not start browser session", "err", err)
		os.Exit(1)
	}
	nav := scraper.NewNavigator(session, cfg, logger, cli.Library, cli.Dataset)
	tracker := progress.New(logger, isatty.IsTerminal(os.Stderr.Fd()))
	crawler := scraper.NewCrawler(session, nav, cfg, logger, tracker, output)

	err = crawler.Run(context.Background())
	session.Close()
	if err != nil {
		logger.Error("extraction failed", "err", err)
		os.Exit(1)
	}
	logger.Info("extraction finished", "output", output)
}
