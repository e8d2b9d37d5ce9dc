// Package browser drives a single Chrome session through chromedp. It
// provides the navigation primitives the scraper runs on: navigation,
// exact-text link clicks, settle/visibility waits, page capture, and
// expansion-control clicking.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// pollInterval is how often visibility waits re-check the page.
const pollInterval = 250 * time.Millisecond

// Options configure the browser session.
type Options struct {
	// Headed runs the browser visibly in a 1280x720 window.
	Headed bool
	// StepTimeout bounds each individual browser operation.
	StepTimeout time.Duration
}

// Session is one live browser tab. The target site's navigation model is
// session-scoped, so a single Session is held open and reused for the
// whole run.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	stepTimeout time.Duration
}

// NewSession launches the browser and connects to it. Failure here is
// fatal for the run; there is nothing to resume without a session.
func NewSession(opts Options) (*Session, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if opts.Headed {
		execOpts = append(execOpts,
			chromedp.Flag("headless", false),
			chromedp.WindowSize(1280, 720),
		)
	} else {
		execOpts = append(execOpts, chromedp.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	stepTimeout := opts.StepTimeout
	if stepTimeout <= 0 {
		stepTimeout = 60 * time.Second
	}

	s := &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		stepTimeout: stepTimeout,
	}

	// Start the browser process now so a broken environment surfaces
	// here instead of on the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("error starting browser: %w", err)
	}

	s.closeUnexpectedPages()
	return s, nil
}

// closeUnexpectedPages closes any page the site spawns on its own, such
// as pop-ups opened by a click. Left open, a new page would steal
// subsequent selections from the working tab.
func (s *Session) closeUnexpectedPages() {
	chromedp.ListenBrowser(s.ctx, func(ev interface{}) {
		e, ok := ev.(*target.EventTargetCreated)
		if !ok {
			return
		}
		info := e.TargetInfo
		if info.Type != "page" || info.OpenerID == "" {
			return
		}
		go func() {
			_ = chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
				return target.CloseTarget(info.TargetID).Do(ctx)
			}))
		}()
	})
}

// Close shuts down the browser.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// step runs actions on the session tab, bounded by timeout and by the
// caller's context.
func (s *Session) step(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the given address in the session tab.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.step(ctx, s.stepTimeout, chromedp.Navigate(url))
}

// Location reports the tab's current address.
func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	if err := s.step(ctx, s.stepTimeout, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// WaitSettled waits until the current document is ready.
func (s *Session) WaitSettled(ctx context.Context) error {
	return s.step(ctx, s.stepTimeout, chromedp.WaitReady("body", chromedp.ByQuery))
}

// HTML captures the full markup of the current page.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.step(ctx, s.stepTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// ClickLink clicks the link whose displayed text equals text exactly
// after trimming. It reports an error when no such link exists.
func (s *Session) ClickLink(ctx context.Context, text string) error {
	js := fmt.Sprintf(`(() => {
		const want = %q;
		const links = Array.from(document.querySelectorAll('a'));
		const hit = links.find(a => a.textContent.trim() === want);
		if (!hit) return false;
		hit.click();
		return true;
	})()`, text)

	var clicked bool
	if err := s.step(ctx, s.stepTimeout, chromedp.Evaluate(js, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no link with text %q", text)
	}
	return nil
}

// WaitForText waits until an element matching selector whose text equals
// (exact) or contains (otherwise) text is visible, polling until timeout.
func (s *Session) WaitForText(ctx context.Context, selector, text string, exact bool, timeout time.Duration) error {
	js := fmt.Sprintf(`(() => {
		const want = %q;
		const exact = %t;
		const els = Array.from(document.querySelectorAll(%q));
		return els.some(el => {
			const t = el.textContent.trim();
			if (exact ? t !== want : !t.includes(want)) return false;
			const r = el.getBoundingClientRect();
			return r.width > 0 && r.height > 0;
		});
	})()`, text, exact, selector)

	deadline := time.Now().Add(timeout)
	for {
		var found bool
		if err := s.step(ctx, s.stepTimeout, chromedp.Evaluate(js, &found)); err != nil {
			return err
		}
		if found {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for %q in %q", timeout, text, selector)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// expandVariants are the element shapes an expansion control can take:
// link-styled, button-styled, or an input matched on its value attribute.
var expandVariants = []struct {
	selector string
	haystack string
}{
	{"a", "el.textContent || ''"},
	{"button", "el.textContent || ''"},
	{"input", "el.getAttribute('value') || ''"},
}

// ExpandControls clicks every currently visible expansion control whose
// text or value contains keyword (case-insensitive), waiting settle after
// each click. It returns the number of controls clicked.
func (s *Session) ExpandControls(ctx context.Context, keyword string, settle time.Duration) (int, error) {
	clicked := 0
	for _, variant := range expandVariants {
		countJS := fmt.Sprintf(`(() => {
			const kw = %q.toLowerCase();
			const els = Array.from(document.querySelectorAll(%q));
			return els.filter(el => {
				if (!(%s).toLowerCase().includes(kw)) return false;
				const r = el.getBoundingClientRect();
				return r.width > 0 && r.height > 0;
			}).length;
		})()`, keyword, variant.selector, variant.haystack)

		var count int
		if err := s.step(ctx, s.stepTimeout, chromedp.Evaluate(countJS, &count)); err != nil {
			return clicked, err
		}

		// Snapshot semantics: the i-th visible control at click time. A
		// control that vanished after an earlier click is skipped.
		for i := 0; i < count; i++ {
			clickJS := fmt.Sprintf(`(() => {
				const kw = %q.toLowerCase();
				const els = Array.from(document.querySelectorAll(%q));
				const visible = els.filter(el => {
					if (!(%s).toLowerCase().includes(kw)) return false;
					const r = el.getBoundingClientRect();
					return r.width > 0 && r.height > 0;
				});
				const el = visible[%d];
				if (!el) return false;
				el.click();
				return true;
			})()`, keyword, variant.selector, variant.haystack, i)

			var hit bool
			if err := s.step(ctx, s.stepTimeout, chromedp.Evaluate(clickJS, &hit)); err != nil {
				return clicked, err
			}
			if !hit {
				continue
			}
			clicked++
			if err := s.step(ctx, settle+time.Second, chromedp.Sleep(settle)); err != nil {
				return clicked, err
			}
		}
	}
	return clicked, nil
}
