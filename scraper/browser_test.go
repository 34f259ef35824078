package scraper

import (
	"context"
	"errors"
	"testing"

	"deals-scraper/utils"
)

// A cancelled run context must stop every surface operation before it
// reaches the browser.
func TestBrowserSurfaceObservesCancelledContext(t *testing.T) {
	surf := &BrowserSurface{ctx: context.Background(), logger: utils.NewLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := surf.ScrollToBottom(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ScrollToBottom: %v; want context.Canceled", err)
	}
	if _, err := surf.PageHeight(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("PageHeight: %v; want context.Canceled", err)
	}
	if _, err := surf.ClickLoadMore(ctx, "Load more"); !errors.Is(err, context.Canceled) {
		t.Errorf("ClickLoadMore: %v; want context.Canceled", err)
	}
	if err := surf.WaitLoadingGone(ctx, "svg.loading"); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitLoadingGone: %v; want context.Canceled", err)
	}
	if err := surf.ScrollItemsIntoView(ctx, "li.item"); !errors.Is(err, context.Canceled) {
		t.Errorf("ScrollItemsIntoView: %v; want context.Canceled", err)
	}
	if _, err := surf.HTML(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("HTML: %v; want context.Canceled", err)
	}
}

func TestJSStringQuoting(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Load more", `"Load more"`},
		{`a"b`, `"a\"b"`},
		{`back\slash`, `"back\\slash"`},
	}
	for _, c := range cases {
		if got := jsString(c.in); got != c.want {
			t.Errorf("jsString(%q) = %s; want %s", c.in, got, c.want)
		}
	}
}
