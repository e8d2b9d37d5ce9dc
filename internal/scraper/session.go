package scraper

import (
	"context"
	"time"
)

// Session is the navigation capability the scraper drives. The production
// implementation is internal/browser; tests substitute a fake.
type Session interface {
	// Navigate loads an address in the working tab.
	Navigate(ctx context.Context, url string) error
	// Location reports the tab's current address.
	Location(ctx context.Context) (string, error)
	// WaitSettled waits until the current document is ready.
	WaitSettled(ctx context.Context) error
	// ClickLink clicks the link whose displayed text matches exactly.
	ClickLink(ctx context.Context, text string) error
	// WaitForText waits until a visible element matching selector equals
	// (exact) or contains text, up to timeout.
	WaitForText(ctx context.Context, selector, text string, exact bool, timeout time.Duration) error
	// HTML captures the current page markup.
	HTML(ctx context.Context) (string, error)
	// ExpandControls clicks visible expansion controls containing
	// keyword, pausing settle after each, and reports how many.
	ExpandControls(ctx context.Context, keyword string, settle time.Duration) (int, error)
}
