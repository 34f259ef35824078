package sites

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"deals-scraper/models"
	"deals-scraper/scraper"
	"deals-scraper/storage"
)

const (
	shoppersPageURL = "https://www.shoppersdrugmart.ca/shop/categories/offers/c/FS-Offers" +
		"?nav=%%2Fshop%%2Fcategories%%2Foffers&q=trending&showInStock=true&page=%d" +
		"&sort=top-rated&promotions=PC%%2BOptimum%%2BOffer&promotions=Sale&promotions=Clearance"

	shoppersGridSelector = `div[data-testid="product-grid"]`
	shoppersItemSelector = "div.chakra-linkbox"
	shoppersStrikePrice  = "span.plp__priceStrikeThrough__2MAlQ"
)

// Shoppers harvests the JavaScript-rendered offers grid, or individual
// product detail pages when built with NewShoppersDetail.
type Shoppers struct {
	session *scraper.Session
	stab    *scraper.Stabilizer
	scroll  scraper.ScrollOptions
	detail  bool
}

// NewShoppersGrid harvests paginated offers-grid views.
func NewShoppersGrid(session *scraper.Session, stab *scraper.Stabilizer, scroll scraper.ScrollOptions) *Shoppers {
	return &Shoppers{session: session, stab: stab, scroll: scroll}
}

// NewShoppersDetail harvests individual product pages from URL units.
func NewShoppersDetail(session *scraper.Session, stab *scraper.Stabilizer, scroll scraper.ScrollOptions) *Shoppers {
	return &Shoppers{session: session, stab: stab, scroll: scroll, detail: true}
}

func (s *Shoppers) Name() string {
	if s.detail {
		return "shoppersdrugmart-urls"
	}
	return "shoppersdrugmart"
}

func (s *Shoppers) WriteMode() storage.WriteMode { return storage.ModeUpsert }

func (s *Shoppers) PageUnit(page int) scraper.Unit {
	return scraper.Unit{
		ID:       fmt.Sprintf("page-%d", page),
		Page:     page,
		Category: "offers",
	}
}

// URLUnits builds detail-page units from a URL list.
func (s *Shoppers) URLUnits(urls []string) []scraper.Unit {
	units := make([]scraper.Unit, 0, len(urls))
	for i, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		units = append(units, scraper.Unit{
			ID:       fmt.Sprintf("url-%d", i+1),
			URL:      u,
			Category: "offers",
		})
	}
	return units
}

func (s *Shoppers) Stabilize(ctx context.Context, unit scraper.Unit) (string, error) {
	url := unit.URL
	if url == "" {
		url = fmt.Sprintf(shoppersPageURL, unit.Page)
	}

	surf, release, err := s.session.Open(ctx, url)
	if err != nil {
		return "", err
	}
	defer release()

	opts := s.scroll
	if !s.detail {
		opts.ItemSelector = shoppersItemSelector
	}
	if err := s.stab.Stabilize(ctx, surf, opts); err != nil {
		return "", err
	}

	if s.detail {
		return surf.HTML(ctx, "")
	}
	return surf.HTML(ctx, shoppersGridSelector)
}

func (s *Shoppers) Extractor() scraper.ItemExtractor {
	if s.detail {
		return shoppersDetailExtractor{}
	}
	return shoppersGridExtractor{}
}

type shoppersGridExtractor struct{}

func (shoppersGridExtractor) ItemSelector() string { return shoppersItemSelector }

// ExtractItem reads one grid tile. Price and was-price arrive as loose
// text nodes ("sale" label plus amount), so both go through the
// currency-pattern recovery.
func (shoppersGridExtractor) ExtractItem(sel *goquery.Selection) (*models.RawProduct, error) {
	url, _ := sel.Find("a.chakra-linkbox__overlay").First().Attr("href")
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("grid tile has no product link")
	}

	price := scraper.RecoverPrice(scraper.TextFragments(sel.Find(`p[data-testid="price"]`)))
	was := scraper.RecoverPrice(scraper.TextFragments(sel.Find(`p[data-testid="was-price"]`)))
	if price == "" && was != "" {
		price = was
	}

	var badges []string
	sel.Find(`[data-testid="product-deal-badge"], [data-testid="product-pco-badge"]`).
		Each(func(_ int, b *goquery.Selection) {
			if t := strings.TrimSpace(b.Text()); t != "" {
				badges = append(badges, t)
			}
		})

	raw := &models.RawProduct{
		URL:            url,
		Title:          strings.TrimSpace(sel.Find(`[data-testid="product-title"]`).First().Text()),
		Brand:          strings.TrimSpace(sel.Find(`[data-testid="product-brand"]`).First().Text()),
		CurrentPrice:   price,
		RegularPrice:   was,
		PromotionLabel: strings.Join(badges, ", "),
	}

	if img := attrOr(sel.Find(`[data-testid="product-image"] img`).First(), "src"); img != "" {
		raw.ImageURLs = []string{img}
	}

	return raw, nil
}

type shoppersDetailExtractor struct{}

func (shoppersDetailExtractor) ItemSelector() string { return "body" }

// ExtractItem reads a full product page: one container, one record. The
// page counts as unloaded when both title and brand are missing.
func (shoppersDetailExtractor) ExtractItem(sel *goquery.Selection) (*models.RawProduct, error) {
	title := strings.TrimSpace(sel.Find("h1.plp__pageHeading__zUcEq").First().Text())
	brand := strings.TrimSpace(sel.Find("p.plp__brandName__8MSID a").First().Text())
	if title == "" && brand == "" {
		return nil, fmt.Errorf("product page content did not load")
	}

	priceBox := sel.Find(`p[data-testid="price-container"]`).First()
	current, regular := scraper.SplitPricePair(priceBox, shoppersStrikePrice)

	var images []string
	sel.Find("ul.plp__list__1QwAH li img.plp__image__WzRYO").Each(func(_ int, img *goquery.Selection) {
		if src := attrOr(img, "src"); src != "" {
			images = append(images, src)
		}
	})

	promoEnds := strings.TrimSpace(sel.Find("div.plp__offerContainer__2pipm span.plp__date__1U7ai").First().Text())
	promoEnds = strings.TrimSpace(strings.TrimPrefix(promoEnds, "Offer ends"))

	return &models.RawProduct{
		Title:          title,
		Brand:          brand,
		Rating:         strings.TrimSpace(sel.Find("div.pr-snippet-rating-decimal").First().Text()),
		Reviews:        strings.TrimSpace(sel.Find("a.pr-snippet-review-count").First().Text()),
		CurrentPrice:   current,
		RegularPrice:   regular,
		PromotionLabel: strings.TrimSpace(sel.Find("div.plp__offerContainer__2pipm > h3").First().Text()),
		PromotionEnds:  promoEnds,
		ImageURLs:      images,
	}, nil
}
