// Package sites holds the per-site instantiations of the harvesting
// pipeline: unit addressing, stabilization mode and item extraction for
// each catalog surface.
package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"deals-scraper/models"
	"deals-scraper/scraper"
	"deals-scraper/storage"
	"deals-scraper/utils"
)

const (
	ccBaseURL    = "https://www.canadacomputers.com/en/clearance"
	ccItemMarker = "js-product"
)

// CanadaComputers harvests the server-rendered clearance listing through
// its AJAX pagination endpoint.
type CanadaComputers struct {
	pager *scraper.StaticPager
}

func NewCanadaComputers(logger *utils.Logger) *CanadaComputers {
	return &CanadaComputers{
		pager: scraper.NewStaticPager(logger,
			[]string{"www.canadacomputers.com"}, ccBaseURL),
	}
}

func (s *CanadaComputers) Name() string { return "canadacomputers" }

func (s *CanadaComputers) WriteMode() storage.WriteMode { return storage.ModeAppend }

func (s *CanadaComputers) PageUnit(page int) scraper.Unit {
	return scraper.Unit{
		ID:       fmt.Sprintf("page-%d", page),
		Page:     page,
		Category: "clearance",
	}
}

func (s *CanadaComputers) Stabilize(ctx context.Context, unit scraper.Unit) (string, error) {
	url := fmt.Sprintf("%s?page=%d&ajaxtrue=1&onlyproducts=1", ccBaseURL, unit.Page)
	return s.pager.FetchListing(url, ccItemMarker)
}

func (s *CanadaComputers) Extractor() scraper.ItemExtractor { return ccExtractor{} }

type ccExtractor struct{}

func (ccExtractor) ItemSelector() string { return "div.js-product" }

// ExtractItem reads the clearance tile. Prices, rating and stock flags are
// carried as data attributes on this surface.
func (ccExtractor) ExtractItem(sel *goquery.Selection) (*models.RawProduct, error) {
	link := sel.Find("h2.product-title a").First()
	url, _ := link.Attr("href")
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("item container has no product link")
	}

	desc := sel.Find("div.product-description").First()
	stock := sel.Find(".available-tag").First()

	raw := &models.RawProduct{
		URL:          url,
		Title:        strings.TrimSpace(link.Text()),
		CurrentPrice: attrOr(desc, "data-final_price"),
		RegularPrice: attrOr(desc, "data-regular_price"),
		Rating:       attrOr(sel.Find(".review-icon").First(), "data-score"),
		Reviews:      strings.TrimSpace(sel.Find(".star-number").First().Text()),
		StockOnline:  attrOr(stock, "data-stock_availability_online"),
		StockRetail:  attrOr(stock, "data-stock_availability_retail"),
	}

	if img := attrOr(sel.Find("img").First(), "data-full-size-image-url"); img != "" {
		raw.ImageURLs = []string{img}
	}

	return raw, nil
}

func attrOr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}
