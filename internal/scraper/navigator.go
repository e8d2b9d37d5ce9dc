package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/dictscrape/internal/config"
)

// listingMarker is the text that identifies the variable listing table.
const listingMarker = "Variable Name"

// Navigator drives the site through its fixed selection sequence:
// home -> library -> dataset -> listing, and per variable back through
// the dataset to one detail view. The detail view is not independently
// addressable; it only exists as the result of a live selection sequence,
// so every ReachDetail replays the dataset selection from the remembered
// library address. That round trip once per variable is the dominant cost
// of the crawl and is required for correctness.
type Navigator struct {
	session Session
	cfg     config.Config
	logger  *log.Logger

	library string
	dataset string

	// libraryURL is the address captured after the library selection was
	// positively confirmed. ReachDetail re-enters from here.
	libraryURL string
}

// NewNavigator creates a Navigator for one library/dataset pair.
func NewNavigator(session Session, cfg config.Config, logger *log.Logger, library, dataset string) *Navigator {
	return &Navigator{
		session: session,
		cfg:     cfg,
		logger:  logger,
		library: library,
		dataset: dataset,
	}
}

// ReachListing navigates from the dictionary home to the dataset's
// variable listing and remembers the library page address on the way.
func (n *Navigator) ReachListing(ctx context.Context) error {
	n.logger.Info("opening dictionary home", "url", n.cfg.StartURL)
	if err := n.session.Navigate(ctx, n.cfg.StartURL); err != nil {
		return fmt.Errorf("error opening start page: %w", err)
	}
	if err := n.settle(ctx); err != nil {
		return err
	}

	n.logger.Info("selecting library", "name", n.library)
	if err := n.session.ClickLink(ctx, n.library); err != nil {
		return fmt.Errorf("error selecting library %q: %w", n.library, err)
	}
	if err := n.settle(ctx); err != nil {
		return err
	}

	// An exact-text click can silently miss when the displayed name does
	// not match precisely. The dataset link becoming visible is the
	// positive confirmation that the library page actually loaded.
	if err := n.session.WaitForText(ctx, "a", n.dataset, true, n.cfg.LinkTimeout.Std()); err != nil {
		return fmt.Errorf("library page did not show dataset %q: %w", n.dataset, err)
	}

	addr, err := n.session.Location(ctx)
	if err != nil {
		return fmt.Errorf("error reading library page address: %w", err)
	}
	n.libraryURL = addr
	n.logger.Info("library page confirmed", "url", addr)

	if err := n.selectDataset(ctx); err != nil {
		return err
	}

	if err := n.session.WaitForText(ctx, "table", listingMarker, false, n.cfg.ListingTimeout.Std()); err != nil {
		return fmt.Errorf("variable listing did not appear: %w", err)
	}
	return nil
}

// ReachDetail re-enters the dataset from the remembered library address
// and selects one variable, leaving its detail view on screen.
func (n *Navigator) ReachDetail(ctx context.Context, variableName string) error {
	if n.libraryURL == "" {
		return errors.New("listing has not been reached yet")
	}

	if err := n.session.Navigate(ctx, n.libraryURL); err != nil {
		return fmt.Errorf("error returning to library page: %w", err)
	}
	if err := n.settle(ctx); err != nil {
		return err
	}

	if err := n.selectDataset(ctx); err != nil {
		return err
	}

	if err := n.session.ClickLink(ctx, variableName); err != nil {
		return fmt.Errorf("error selecting variable %q: %w", variableName, err)
	}
	if err := n.session.WaitSettled(ctx); err != nil {
		return fmt.Errorf("error waiting for detail view: %w", err)
	}
	// Detail content can keep rendering after the document settles.
	return pause(ctx, n.cfg.DetailSettleDelay.Std())
}

func (n *Navigator) selectDataset(ctx context.Context) error {
	if err := n.session.ClickLink(ctx, n.dataset); err != nil {
		return fmt.Errorf("error selecting dataset %q: %w", n.dataset, err)
	}
	return n.settle(ctx)
}

// settle waits for the document plus the fixed quiescence delay that the
// site needs to finish rendering after a transition.
func (n *Navigator) settle(ctx context.Context) error {
	if err := n.session.WaitSettled(ctx); err != nil {
		return fmt.Errorf("error waiting for page to settle: %w", err)
	}
	return pause(ctx, n.cfg.SettleDelay.Std())
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
