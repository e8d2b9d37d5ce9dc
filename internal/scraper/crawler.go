package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/dictscrape/internal/config"
	"github.com/go-scripts/dictscrape/internal/ledger"
	"github.com/go-scripts/dictscrape/internal/progress"
	"github.com/go-scripts/dictscrape/internal/worklist"
	"github.com/go-scripts/dictscrape/internal/writer"
)

// Crawler runs the whole extraction: reach the listing, index it,
// subtract the resume ledger, then extract and persist each remaining
// variable in listing order. The output CSV is the only durable state; it
// is both the result and the resume checkpoint.
type Crawler struct {
	session    Session
	nav        *Navigator
	extractor  *DetailExtractor
	cfg        config.Config
	logger     *log.Logger
	tracker    *progress.Tracker
	outputPath string
}

// NewCrawler wires a Crawler over an established session.
func NewCrawler(session Session, nav *Navigator, cfg config.Config, logger *log.Logger, tracker *progress.Tracker, outputPath string) *Crawler {
	return &Crawler{
		session:    session,
		nav:        nav,
		extractor:  NewDetailExtractor(session, nav, cfg, logger),
		cfg:        cfg,
		logger:     logger,
		tracker:    tracker,
		outputPath: outputPath,
	}
}

// Run executes the crawl. It returns an error only for fatal conditions:
// failure to reach or read the listing, or failure to persist a row.
// Per-variable extraction failures are absorbed; a variable selected for
// processing is always written, with empty detail fields if need be.
func (c *Crawler) Run(ctx context.Context) error {
	if err := c.nav.ReachListing(ctx); err != nil {
		return fmt.Errorf("error reaching variable listing: %w", err)
	}

	html, err := c.session.HTML(ctx)
	if err != nil {
		return fmt.Errorf("error capturing listing view: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("error parsing listing view: %w", err)
	}

	variables := IndexVariables(doc, c.logger)

	// Recomputed fresh every run; the ledger is never mutated in place.
	done := ledger.Read(c.outputPath, c.logger)
	pending := worklist.Remaining(variables, done)

	c.tracker.SetTotal(len(variables), len(variables)-len(pending))
	defer c.tracker.Stop()

	out, err := writer.Open(c.outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if len(pending) == 0 {
		c.logger.Info("all variables already extracted, nothing to do", "output", c.outputPath)
		return nil
	}

	for _, v := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.tracker.StartVariable(v.Name)

		detail, err := c.extractor.Extract(ctx, v.Name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.tracker.SkipDetail(v.Name, err)
		}

		if err := out.Append(v, detail); err != nil {
			return fmt.Errorf("error writing row for %q: %w", v.Name, err)
		}
		c.tracker.FinishVariable(v.Name)
	}

	c.logger.Info("extraction complete",
		"processed", len(pending),
		"skipped", len(variables)-len(pending),
		"total", len(variables))
	return nil
}
