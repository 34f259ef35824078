package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"deals-scraper/models"
	"deals-scraper/utils"
)

var (
	// currencyRegexp matches $10.99, $ 1,234.56 and similar
	currencyRegexp = regexp.MustCompile(`\$\s*\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`)
	// bareAmountRegexp recovers a price that lost its currency symbol
	bareAmountRegexp = regexp.MustCompile(`\d+\.\d{2}`)
)

// ItemExtractor is the site-specific capability of pulling one item's raw
// fields out of its container markup.
type ItemExtractor interface {
	// ItemSelector matches the item containers within a snapshot.
	ItemSelector() string
	// ExtractItem maps one container to raw fields. A missing sub-element
	// yields a sentinel value for that field; an error means the whole
	// item is unusable and should be skipped.
	ExtractItem(sel *goquery.Selection) (*models.RawProduct, error)
}

// ParseDocument builds a DOM from a stabilized markup snapshot.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return doc, nil
}

// ExtractAll maps a snapshot to an ordered slice of raw products. A failed
// item is logged and skipped; it never aborts the batch.
func ExtractAll(logger *utils.Logger, doc *goquery.Document, ex ItemExtractor) []*models.RawProduct {
	var raws []*models.RawProduct

	doc.Find(ex.ItemSelector()).Each(func(i int, sel *goquery.Selection) {
		raw, err := extractOne(ex, sel)
		if err != nil {
			logger.Warn("[extract] Item %d skipped: %v", i+1, err)
			return
		}
		raws = append(raws, raw)
	})

	return raws
}

func extractOne(ex ItemExtractor, sel *goquery.Selection) (raw *models.RawProduct, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, fmt.Errorf("panic during extraction: %v", r)
		}
	}()
	return ex.ExtractItem(sel)
}

// TextFragments collects the non-empty direct text pieces of a selection,
// in document order. Loosely structured price markup ("sale" label and
// amount as sibling text nodes) comes through as separate fragments.
func TextFragments(sel *goquery.Selection) []string {
	var out []string
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if t := strings.TrimSpace(c.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// RecoverPrice concatenates candidate fragments and applies a currency
// pattern search, falling back to a bare decimal amount. Returns "" when
// nothing price-shaped is present.
func RecoverPrice(fragments []string) string {
	var parts []string
	for _, f := range fragments {
		if t := strings.TrimSpace(f); t != "" {
			parts = append(parts, t)
		}
	}
	combined := strings.Join(parts, " ")

	if m := currencyRegexp.FindString(combined); m != "" {
		return strings.ReplaceAll(m, " ", "")
	}
	return bareAmountRegexp.FindString(combined)
}

// SplitPricePair resolves a sale/regular price presentation pair. A
// strikethrough element present means two prices; absent means the single
// displayed price doubles as the regular price.
func SplitPricePair(container *goquery.Selection, strikeSelector string) (current, regular string) {
	full := strings.TrimSpace(container.Text())
	strike := container.Find(strikeSelector).First()

	if strike.Length() == 0 {
		p := RecoverPrice([]string{full})
		return p, p
	}

	strikeText := strings.TrimSpace(strike.Text())
	currentText := strings.Replace(full, strikeText, "", 1)

	current = RecoverPrice([]string{currentText})
	regular = RecoverPrice([]string{strikeText})
	if current == "" && regular != "" {
		current = regular
	}
	return current, regular
}
