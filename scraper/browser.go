package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"deals-scraper/config"
	"deals-scraper/utils"
)

const (
	navigateTimeout  = 90 * time.Second
	initialLoadDelay = 5 * time.Second
	loadingGoneWait  = 10 * time.Second
	itemScrollPause  = 500 * time.Millisecond
)

// Session owns the browser process for the duration of a run. It is a
// single exclusively-owned resource: units are processed one at a time and
// each gets a fresh tab context from the shared allocator.
type Session struct {
	logger      *utils.Logger
	retry       *utils.RetryConfig
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	cancelBase  context.CancelFunc
}

// NewSession launches the browser allocator. Close must be called on every
// exit path.
func NewSession(cfg *config.Config, logger *utils.Logger) (*Session, error) {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	baseCtx, cancelBase := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &Session{
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		allocCtx:    baseCtx,
		cancelAlloc: cancelAlloc,
		cancelBase:  cancelBase,
	}, nil
}

// Close releases the browser process.
func (s *Session) Close() {
	s.cancelBase()
	s.cancelAlloc()
}

// Open navigates a fresh tab to url and returns its Surface plus a release
// function. Navigation is retried with backoff. Cancelling ctx tears the
// tab down, so long chromedp calls abort mid-flight instead of running to
// completion.
func (s *Session) Open(ctx context.Context, url string) (*BrowserSurface, func(), error) {
	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, navigateTimeout)

	stopLink := context.AfterFunc(ctx, cancelTimeout)
	release := func() {
		stopLink()
		cancelTimeout()
		cancelTab()
	}

	err := s.retry.Do(ctx, "navigate", func() error {
		return chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.Sleep(initialLoadDelay),
		)
	})
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("open %s: %w", url, err)
	}

	return &BrowserSurface{ctx: tabCtx, logger: s.logger}, release, nil
}

// BrowserSurface implements Surface on top of one chromedp tab.
type BrowserSurface struct {
	ctx    context.Context
	logger *utils.Logger
}

func (b *BrowserSurface) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(b.ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
	)
}

func (b *BrowserSurface) PageHeight(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var height int64
	err := chromedp.Run(b.ctx,
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
	)
	return height, err
}

// ClickLoadMore finds a button containing buttonText, scrolls it into view
// and clicks it. Returns false when no such button exists.
func (b *BrowserSurface) ClickLoadMore(ctx context.Context, buttonText string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var clicked bool
	err := chromedp.Run(b.ctx,
		chromedp.Evaluate(`
			(function() {
				var needle = `+jsString(buttonText)+`.toLowerCase();
				var buttons = document.querySelectorAll('button, a[role="button"]');
				for (var i = 0; i < buttons.length; i++) {
					var text = (buttons[i].textContent || '').trim().toLowerCase();
					if (text.indexOf(needle) === -1) continue;
					if (buttons[i].disabled || buttons[i].offsetParent === null) continue;
					buttons[i].scrollIntoView({block: 'center'});
					buttons[i].click();
					return true;
				}
				return false;
			})()
		`, &clicked),
	)
	if err != nil {
		return false, fmt.Errorf("load-more click: %w", err)
	}
	return clicked, nil
}

func (b *BrowserSurface) WaitLoadingGone(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(b.ctx, loadingGoneWait)
	defer cancel()
	return chromedp.Run(waitCtx,
		chromedp.WaitNotPresent(selector, chromedp.ByQuery),
	)
}

// ScrollItemsIntoView walks every item container and scrolls it to the
// viewport center, pausing briefly so lazy content can load.
func (b *BrowserSurface) ScrollItemsIntoView(ctx context.Context, itemSelector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var count int64
	err := chromedp.Run(b.ctx,
		chromedp.Evaluate(`document.querySelectorAll(`+jsString(itemSelector)+`).length`, &count),
	)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}

	for i := int64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := chromedp.Run(b.ctx,
			chromedp.Evaluate(fmt.Sprintf(`
				(function() {
					var els = document.querySelectorAll(%s);
					if (els[%d]) els[%d].scrollIntoView({behavior: 'smooth', block: 'center'});
				})()
			`, jsString(itemSelector), i, i), nil),
			chromedp.Sleep(itemScrollPause),
		)
		if err != nil {
			b.logger.Debug("[browser] Scroll to item %d failed: %v", i, err)
		}
	}
	return nil
}

func (b *BrowserSurface) HTML(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if selector == "" {
		selector = "html"
	}
	var html string
	err := chromedp.Run(b.ctx,
		chromedp.OuterHTML(selector, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("snapshot %q: %w", selector, err)
	}
	return html, nil
}

// jsString quotes a Go string as a JS string literal.
func jsString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// findChromeBinary locates the Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
