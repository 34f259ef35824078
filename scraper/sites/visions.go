package sites

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"deals-scraper/models"
	"deals-scraper/scraper"
	"deals-scraper/storage"
)

const visionsCategoryURL = "https://www.visions.ca/deals/clearance?cat=%d&visions_item_status=239699#clearancedeals"

// visionsCategories maps the site's numeric category ids to names.
var visionsCategories = map[int]string{
	36:  "Television",
	40:  "Home Audio",
	16:  "Laptops",
	6:   "Personal Audio",
	15:  "Cameras and Drones",
	17:  "Smart Lighting",
	488: "A/C and Cooling",
	5:   "Car Tech",
	13:  "Wearables",
	46:  "Car Accessories",
	18:  "Major Appliances",
	19:  "Small Appliances",
}

// visionsSkip holds categories that are too large to refresh in one run.
var visionsSkip = map[int]bool{36: true, 18: true}

var visionsSaveRegexp = regexp.MustCompile(`Save\s*\$([\d,.]+)`)

// Visions harvests the clearance listings one category at a time. Every
// run replaces the stored rows for the categories it covers.
type Visions struct {
	session *scraper.Session
	stab    *scraper.Stabilizer
	scroll  scraper.ScrollOptions
}

func NewVisions(session *scraper.Session, stab *scraper.Stabilizer, scroll scraper.ScrollOptions) *Visions {
	return &Visions{session: session, stab: stab, scroll: scroll}
}

func (v *Visions) Name() string { return "visions" }

func (v *Visions) WriteMode() storage.WriteMode { return storage.ModeReplace }

// Units lists one unit per active category, in ascending id order so
// repeated runs cover the catalogue in the same sequence.
func (v *Visions) Units() []scraper.Unit {
	ids := make([]int, 0, len(visionsCategories))
	for id := range visionsCategories {
		if visionsSkip[id] {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	units := make([]scraper.Unit, 0, len(ids))
	for _, id := range ids {
		units = append(units, scraper.Unit{
			ID:       fmt.Sprintf("cat-%d", id),
			URL:      fmt.Sprintf(visionsCategoryURL, id),
			Category: visionsCategories[id],
		})
	}
	return units
}

func (v *Visions) Stabilize(ctx context.Context, unit scraper.Unit) (string, error) {
	surf, release, err := v.session.Open(ctx, unit.URL)
	if err != nil {
		return "", err
	}
	defer release()

	opts := v.scroll
	opts.LoadMoreText = "Load more"
	opts.LoadingSelector = "svg.amscroll-loading-icon"
	opts.ItemSelector = "li.item.product.product-item"
	if err := v.stab.Stabilize(ctx, surf, opts); err != nil {
		return "", err
	}
	return surf.HTML(ctx, "")
}

func (v *Visions) Extractor() scraper.ItemExtractor { return visionsExtractor{} }

type visionsExtractor struct{}

func (visionsExtractor) ItemSelector() string { return "li.item.product.product-item" }

func (visionsExtractor) ExtractItem(sel *goquery.Selection) (*models.RawProduct, error) {
	link := sel.Find("a.product-item-link").First()
	url, _ := link.Attr("href")
	title := strings.TrimSpace(link.Text())
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("product tile has no link")
	}

	current := strings.TrimSpace(sel.Find("span.special-price span.price-wrapper").First().Text())
	regular := strings.TrimSpace(sel.Find("span.old-price span.price-wrapper").First().Text())
	if regular == "" {
		regular = strings.TrimSpace(sel.Find("span.price-wrapper").First().Text())
	}

	var discount string
	if m := visionsSaveRegexp.FindStringSubmatch(sel.Find("span.vision-tier-price").Text()); m != nil {
		discount = "$" + m[1]
	}

	promoEnds := strings.TrimSpace(sel.Find("div.rw-grid-date").First().Text())
	promoEnds = strings.TrimSpace(strings.TrimPrefix(promoEnds, "Sale Ends:"))

	return &models.RawProduct{
		URL:            url,
		Title:          title,
		Brand:          firstWord(title),
		CurrentPrice:   current,
		RegularPrice:   regular,
		DiscountAmount: discount,
		Rating:         strings.TrimSpace(sel.Find("div.pr-snippet-rating-decimal").First().Text()),
		Reviews:        strings.TrimSpace(sel.Find("div.pr-category-snippet__total").First().Text()),
		PromotionEnds:  promoEnds,
	}, nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
