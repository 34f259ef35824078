package scraper

import (
	"fmt"
	"strings"

	"github.com/gocolly/colly/v2"

	"deals-scraper/utils"
)

const staticUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:143.0) " +
	"Gecko/20100101 Firefox/143.0"

// StaticPager fetches paginated listing markup over plain HTTP for sites
// that render their catalog server-side.
type StaticPager struct {
	logger    *utils.Logger
	collector *colly.Collector

	lastBody []byte
	lastErr  error
}

// NewStaticPager builds a collector restricted to the given domains.
func NewStaticPager(logger *utils.Logger, domains []string, referer string) *StaticPager {
	c := colly.NewCollector(
		colly.AllowedDomains(domains...),
		colly.UserAgent(staticUserAgent),
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = true

	p := &StaticPager{logger: logger, collector: c}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		if referer != "" {
			r.Headers.Set("Referer", referer)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		p.lastBody = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		p.lastErr = err
	})

	return p
}

// FetchListing retrieves one page and returns its markup. An empty result
// with a nil error means the page carries no recognizable listing markup —
// the pagination is exhausted, which is not an error.
func (p *StaticPager) FetchListing(pageURL, itemMarker string) (string, error) {
	p.lastBody = nil
	p.lastErr = nil

	// Visit is synchronous for a non-async collector.
	if err := p.collector.Visit(pageURL); err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if p.lastErr != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, p.lastErr)
	}

	body := strings.TrimSpace(string(p.lastBody))
	if body == "" || !strings.Contains(body, itemMarker) {
		p.logger.Debug("[static] No listing markup at %s — page exhausted", pageURL)
		return "", nil
	}
	return body, nil
}
