package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawProduct holds unprocessed extracted data exactly as it appeared in the
// page markup. Every field is untyped text until it passes through the
// normalizer; "N/A" and "" both mean the sub-element was missing.
type RawProduct struct {
	URL            string
	Title          string
	Brand          string
	Model          string
	CurrentPrice   string
	RegularPrice   string
	DiscountAmount string
	Rating         string
	Reviews        string
	StockOnline    string
	StockRetail    string
	PromotionLabel string
	PromotionEnds  string
	ImageURLs      []string
}

// Product is the normalized, validated record ready for persistence.
// It is never mutated after the normalizer constructs it.
type Product struct {
	ID              int64               `json:"-"`
	URL             string              `json:"url"`
	Title           string              `json:"title"`
	Brand           string              `json:"brand,omitempty"`
	Model           string              `json:"model,omitempty"`
	CurrentPrice    decimal.NullDecimal `json:"current_price"`
	RegularPrice    decimal.NullDecimal `json:"regular_price"`
	DiscountAmount  decimal.NullDecimal `json:"discount_amount"`
	DiscountPercent decimal.NullDecimal `json:"discount_percent"`
	Rating          decimal.Decimal     `json:"rating"`
	ReviewCount     int                 `json:"review_count"`
	InStockOnline   bool                `json:"in_stock_online"`
	InStockRetail   bool                `json:"in_stock_retail"`
	PromotionLabel  string              `json:"promotion_label,omitempty"`
	PromotionEnds   *time.Time          `json:"promotion_ends,omitempty"`
	ImageURLs       []string            `json:"image_urls,omitempty"`
	Category        string              `json:"category,omitempty"`
	ScrapedAt       time.Time           `json:"scraped_at"`
}

// HarvestReport holds the computed analytics over the persisted dataset.
type HarvestReport struct {
	TotalProducts      int
	DiscountedProducts int
	AvgDiscountPercent float64
	DeepestDiscount    *Product
	TopRated           []*Product
	ProductsByCategory map[string]int
}
