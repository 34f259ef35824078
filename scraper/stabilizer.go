package scraper

import (
	"context"
	"time"

	"deals-scraper/utils"
)

// Surface is the small scripting capability the stabilizer needs from a
// rendering surface. The production implementation drives a Chrome session;
// tests substitute a fake.
type Surface interface {
	ScrollToBottom(ctx context.Context) error
	PageHeight(ctx context.Context) (int64, error)
	// ClickLoadMore activates a load-more affordance matching buttonText.
	// Returns false when no such control is present — that is not an error.
	ClickLoadMore(ctx context.Context, buttonText string) (bool, error)
	// WaitLoadingGone blocks until the in-flight loading indicator clears.
	WaitLoadingGone(ctx context.Context, selector string) error
	// ScrollItemsIntoView scrolls each item container into the viewport to
	// trigger per-item lazy loading.
	ScrollItemsIntoView(ctx context.Context, itemSelector string) error
	// HTML returns the current markup of selector, or the whole document
	// when selector is empty.
	HTML(ctx context.Context, selector string) (string, error)
}

// ScrollOptions configures one stabilization pass.
type ScrollOptions struct {
	// Threshold is the number of consecutive unchanged height readings
	// after which the page is considered fully loaded.
	Threshold int
	// SettleDelay is the wait after a plain scroll step.
	SettleDelay time.Duration
	// LoadMoreWait is the wait after a load-more activation.
	LoadMoreWait time.Duration

	// LoadMoreText enables load-more clicking when non-empty.
	LoadMoreText string
	// LoadingSelector identifies the in-flight loading indicator to wait
	// out after a load-more activation.
	LoadingSelector string
	// ItemSelector enables the secondary per-item scroll pass when set.
	ItemSelector string
}

// Stabilizer drives a rendering surface until no further content growth is
// observed.
type Stabilizer struct {
	logger *utils.Logger
}

func NewStabilizer(logger *utils.Logger) *Stabilizer {
	return &Stabilizer{logger: logger}
}

// Stabilize scrolls, clicks and waits until the page height has been
// unchanged for opts.Threshold consecutive attempts. Height growth and
// successful load-more activations reset the counter; individual scroll or
// click failures count as "no progress" and are never escalated.
func (s *Stabilizer) Stabilize(ctx context.Context, surf Surface, opts ScrollOptions) error {
	lastHeight, err := surf.PageHeight(ctx)
	if err != nil {
		return err
	}

	unchanged := 0
	for unchanged < opts.Threshold {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := surf.ScrollToBottom(ctx); err != nil {
			s.logger.Warn("[stabilize] Scroll failed: %v", err)
		}

		clicked := false
		if opts.LoadMoreText != "" {
			var clickErr error
			clicked, clickErr = surf.ClickLoadMore(ctx, opts.LoadMoreText)
			if clickErr != nil {
				s.logger.Warn("[stabilize] Load-more click failed: %v", clickErr)
				clicked = false
			}
		}

		if clicked {
			if opts.LoadingSelector != "" {
				if err := surf.WaitLoadingGone(ctx, opts.LoadingSelector); err != nil {
					s.logger.Debug("[stabilize] Loading indicator wait: %v", err)
				}
			}
			sleep(ctx, opts.LoadMoreWait)
		} else {
			sleep(ctx, opts.SettleDelay)
		}

		newHeight, err := surf.PageHeight(ctx)
		if err != nil {
			s.logger.Warn("[stabilize] Height read failed: %v", err)
			unchanged++
			continue
		}

		switch {
		case clicked:
			unchanged = 0
			lastHeight = newHeight
		case newHeight != lastHeight:
			s.logger.Debug("[stabilize] New content loaded — height %d", newHeight)
			unchanged = 0
			lastHeight = newHeight
		default:
			unchanged++
			s.logger.Debug("[stabilize] No new content, attempt %d/%d", unchanged, opts.Threshold)
		}
	}

	// Bottom-scrolling alone does not trigger viewport-gated lazy loading
	// of per-item images and prices.
	if opts.ItemSelector != "" {
		if err := surf.ScrollItemsIntoView(ctx, opts.ItemSelector); err != nil {
			s.logger.Warn("[stabilize] Per-item scroll pass failed: %v", err)
		}
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
