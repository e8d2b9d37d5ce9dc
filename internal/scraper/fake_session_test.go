package scraper

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/dictscrape/internal/config"
)

const (
	fakeStartURL   = "http://test/home"
	fakeLibraryURL = "http://test/library"
	fakeLibrary    = "DAD"
	fakeDataset    = "a. DADyyyy: Discharge Abstract Database -DAD"
)

// fakeSession emulates the site's session-scoped state machine: the
// library page only follows a library click, the listing only follows a
// dataset click, and each detail view only follows a variable click.
type fakeSession struct {
	listingHTML  string
	detailHTML   map[string]string
	expandedHTML map[string]string
	failClicks   map[string]bool

	page        string
	currentVar  string
	calls       []string
	expandCalls int
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.calls = append(f.calls, "goto:"+url)
	switch url {
	case fakeStartURL:
		f.page = `<html><a>` + fakeLibrary + `</a></html>`
	case fakeLibraryURL:
		f.page = `<html><a>` + fakeDataset + `</a></html>`
	default:
		return fmt.Errorf("unknown address %q", url)
	}
	return nil
}

func (f *fakeSession) Location(context.Context) (string, error) {
	f.calls = append(f.calls, "location")
	return fakeLibraryURL, nil
}

func (f *fakeSession) WaitSettled(context.Context) error { return nil }

func (f *fakeSession) ClickLink(_ context.Context, text string) error {
	f.calls = append(f.calls, "click:"+text)
	if f.failClicks[text] {
		return fmt.Errorf("no link with text %q", text)
	}
	switch text {
	case fakeLibrary:
		f.page = `<html><a>` + fakeDataset + `</a></html>`
	case fakeDataset:
		f.page = f.listingHTML
		f.currentVar = ""
	default:
		html, ok := f.detailHTML[text]
		if !ok {
			return fmt.Errorf("no link with text %q", text)
		}
		f.currentVar = text
		f.page = html
	}
	return nil
}

func (f *fakeSession) WaitForText(_ context.Context, _, text string, _ bool, _ time.Duration) error {
	f.calls = append(f.calls, "wait:"+text)
	return nil
}

func (f *fakeSession) HTML(context.Context) (string, error) {
	return f.page, nil
}

func (f *fakeSession) ExpandControls(_ context.Context, _ string, _ time.Duration) (int, error) {
	f.expandCalls++
	if html, ok := f.expandedHTML[f.currentVar]; ok {
		f.page = html
		delete(f.expandedHTML, f.currentVar)
		return 1, nil
	}
	return 0, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.StartURL = fakeStartURL
	cfg.SettleDelay = 0
	cfg.DetailSettleDelay = 0
	cfg.ExpandSettleDelay = 0
	return cfg
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}
