package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"deals-scraper/models"
	"deals-scraper/utils"
)

// ModelUnknown is the sentinel returned when a title carries no
// parenthesized model group.
const ModelUnknown = "unknown"

var (
	// digitsRegexp captures the first run of digits in a count string
	digitsRegexp = regexp.MustCompile(`\d+`)
	// parenRegexp captures non-nested parenthesized groups
	parenRegexp = regexp.MustCompile(`\(([^()]+)\)`)

	hundred = decimal.NewFromInt(100)
)

// ParseMoney converts a price string like "$1,299.99" to a decimal.
// Returns an invalid NullDecimal on empty, sentinel, non-numeric or
// negative input — never an error.
func ParseMoney(text string) decimal.NullDecimal {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "N/A" {
		return decimal.NullDecimal{}
	}

	cleaned := strings.NewReplacer("$", "", ",", "").Replace(trimmed)
	cleaned = strings.TrimSpace(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ParsePercent is ParseMoney with a trailing % sign stripped first.
func ParsePercent(text string) decimal.NullDecimal {
	trimmed := strings.TrimSuffix(strings.TrimSpace(text), "%")
	return ParseMoney(trimmed)
}

// ParseCount extracts the first digit run from a string like "1,234 Reviews".
// Returns 0 (not null) on empty or unparseable input — a missing review or
// stock count means zero, not unknown.
func ParseCount(text string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	match := digitsRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// ParseRating converts a rating string to a decimal, 0 on empty or
// unparseable input.
func ParseRating(text string) decimal.Decimal {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "N/A" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseBoolFlag reports whether a raw stock indicator equals the single
// truthy token "1". Every other value, including empty, is false.
func ParseBoolFlag(text string) bool {
	return strings.TrimSpace(text) == "1"
}

// ParseDate parses text against one fixed layout, nil on any mismatch.
// Callers may attempt a secondary layout on nil before giving up.
func ParseDate(text, layout string) *time.Time {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "N/A" {
		return nil
	}
	t, err := time.Parse(layout, trimmed)
	if err != nil {
		return nil
	}
	return &t
}

// ExtractTrailingParenthetical returns the content of the last top-level
// parenthesized group in text, e.g. "TV 55\" (2023) (QN55X)" -> "QN55X".
func ExtractTrailingParenthetical(text string) string {
	matches := parenRegexp.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ModelUnknown
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}

// ComputeDiscount derives the dollar and percent discount from the two
// price fields. Both results are invalid unless regular is present and
// strictly positive and current is present; percent is rounded to 2 places.
func ComputeDiscount(current, regular decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal) {
	if !current.Valid || !regular.Valid || !regular.Decimal.IsPositive() {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}

	amount := regular.Decimal.Sub(current.Decimal)
	percent := amount.Div(regular.Decimal).Mul(hundred).Round(2)

	return decimal.NullDecimal{Decimal: amount, Valid: true},
		decimal.NullDecimal{Decimal: percent, Valid: true}
}

// Normalizer transforms RawProducts into typed, validated Products.
type Normalizer struct {
	logger *utils.Logger

	// promo-date layouts, tried in order until one parses
	dateLayouts []string
}

// defaultDateLayouts covers the promo-date shapes the catalog pages emit:
// "Jan 2, 2006" sale-end dates and "Sep 5 at 11:59PM GMT-0700" offer
// deadlines, with and without a timezone suffix.
var defaultDateLayouts = []string{
	"Jan 2, 2006",
	"Jan 2 at 3:04PM GMT-0700",
	"Jan 2 at 3:04PM",
	"Jan 2 at 3:04pm GMT-0700",
	"Jan 2 at 3:04pm",
}

// NewNormalizer creates a Normalizer with the default promo-date layouts.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger, dateLayouts: defaultDateLayouts}
}

// Normalize converts a batch of raw products into immutable Products.
// Records with an empty URL are dropped, duplicate URLs are skipped, and
// every record in the batch shares one UTC scraped_at stamp.
func (n *Normalizer) Normalize(raw []*models.RawProduct, category string) []*models.Product {
	now := time.Now().UTC()
	seen := utils.NewURLSet()
	result := make([]*models.Product, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" || url == "N/A" {
			n.logger.Warn("[normalizer] Dropping product with empty URL: %s", r.Title)
			continue
		}

		if !seen.Add(url) {
			n.logger.Debug("[normalizer] Duplicate URL skipped: %s", url)
			continue
		}

		title := normaliseText(r.Title)

		model := normaliseText(r.Model)
		if model == "" {
			model = ExtractTrailingParenthetical(title)
		}

		current := ParseMoney(r.CurrentPrice)
		regular := ParseMoney(r.RegularPrice)
		amount, percent := ComputeDiscount(current, regular)

		// Page-supplied discount text is a fallback source only, used when
		// the two prices cannot independently produce the figure.
		if !amount.Valid && r.DiscountAmount != "" {
			amount = ParseMoney(r.DiscountAmount)
		}

		product := &models.Product{
			URL:             url,
			Title:           title,
			Brand:           normaliseText(r.Brand),
			Model:           model,
			CurrentPrice:    current,
			RegularPrice:    regular,
			DiscountAmount:  amount,
			DiscountPercent: percent,
			Rating:          ParseRating(r.Rating),
			ReviewCount:     ParseCount(r.Reviews),
			InStockOnline:   ParseBoolFlag(r.StockOnline),
			InStockRetail:   ParseBoolFlag(r.StockRetail),
			PromotionLabel:  normaliseText(r.PromotionLabel),
			PromotionEnds:   n.parsePromoDate(r.PromotionEnds),
			ImageURLs:       cleanImageURLs(r.ImageURLs),
			Category:        category,
			ScrapedAt:       now,
		}

		result = append(result, product)
	}

	n.logger.Info("[normalizer] Normalized %d → %d products (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

func (n *Normalizer) parsePromoDate(raw string) *time.Time {
	for _, layout := range n.dateLayouts {
		if t := ParseDate(raw, layout); t != nil {
			return t
		}
	}
	return nil
}

func cleanImageURLs(urls []string) []string {
	var out []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u != "" && u != "N/A" {
			out = append(out, u)
		}
	}
	return out
}

// normaliseText strips leading/trailing whitespace, collapses internal
// whitespace and maps the "N/A" sentinel to empty.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	if s == "N/A" {
		return ""
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
