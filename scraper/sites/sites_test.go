package sites

import (
	"testing"

	"deals-scraper/scraper"
	"deals-scraper/utils"
)

const ccFixture = `
<div class="row">
  <div class="js-product col">
    <img data-full-size-image-url="https://cdn.example.com/full/keyboard.jpg" src="thumb.jpg">
    <h2 class="product-title"><a href="https://www.canadacomputers.com/en/p/12345">Mech Keyboard RGB (KB-100)</a></h2>
    <div class="review-icon" data-score="4.5"></div>
    <span class="star-number">(27)</span>
    <div class="product-description" data-final_price="79.99" data-regular_price="99.99"></div>
    <div class="available-tag" data-stock_availability_online="1" data-stock_availability_retail="0"></div>
  </div>
  <div class="js-product col">
    <h2 class="product-title"><span>No link here</span></h2>
  </div>
  <div class="js-product col">
    <h2 class="product-title"><a href="/en/p/67890"> Budget Mouse </a></h2>
    <div class="product-description" data-final_price="19.99" data-regular_price="19.99"></div>
  </div>
</div>`

func TestCanadaComputersExtractor(t *testing.T) {
	doc, err := scraper.ParseDocument(ccFixture)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	raws := scraper.ExtractAll(utils.NewLogger(), doc, ccExtractor{})
	if len(raws) != 2 {
		t.Fatalf("expected 2 items (1 skipped), got %d", len(raws))
	}

	first := raws[0]
	if first.URL != "https://www.canadacomputers.com/en/p/12345" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Title != "Mech Keyboard RGB (KB-100)" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.CurrentPrice != "79.99" || first.RegularPrice != "99.99" {
		t.Errorf("prices = %q / %q", first.CurrentPrice, first.RegularPrice)
	}
	if first.Rating != "4.5" {
		t.Errorf("Rating = %q", first.Rating)
	}
	if first.Reviews != "(27)" {
		t.Errorf("Reviews = %q", first.Reviews)
	}
	if first.StockOnline != "1" || first.StockRetail != "0" {
		t.Errorf("stock flags = %q / %q", first.StockOnline, first.StockRetail)
	}
	if len(first.ImageURLs) != 1 || first.ImageURLs[0] != "https://cdn.example.com/full/keyboard.jpg" {
		t.Errorf("ImageURLs = %v", first.ImageURLs)
	}

	second := raws[1]
	if second.Title != "Budget Mouse" {
		t.Errorf("second Title = %q", second.Title)
	}
	if second.Rating != "" || len(second.ImageURLs) != 0 {
		t.Errorf("missing sub-elements should stay empty: rating=%q images=%v",
			second.Rating, second.ImageURLs)
	}
}

const shoppersGridFixture = `
<div data-testid="product-grid">
  <div class="chakra-linkbox">
    <a class="chakra-linkbox__overlay" href="https://www.shoppersdrugmart.ca/p/BB_111"></a>
    <p data-testid="product-brand">GlowCo</p>
    <h3 data-testid="product-title">Vitamin C Serum</h3>
    <div data-testid="product-image"><img src="https://cdn.example.com/serum.jpg"></div>
    <p data-testid="price"><span>sale</span> $23.99</p>
    <p data-testid="was-price">was $29.99</p>
    <span data-testid="product-deal-badge">Sale</span>
    <span data-testid="product-pco-badge">PC Optimum Offer</span>
  </div>
  <div class="chakra-linkbox">
    <a class="chakra-linkbox__overlay" href="https://www.shoppersdrugmart.ca/p/BB_222"></a>
    <h3 data-testid="product-title">Lip Balm</h3>
    <p data-testid="was-price">$4.49</p>
  </div>
  <div class="chakra-linkbox">
    <h3 data-testid="product-title">Orphan tile without a link</h3>
  </div>
</div>`

func TestShoppersGridExtractor(t *testing.T) {
	doc, err := scraper.ParseDocument(shoppersGridFixture)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	raws := scraper.ExtractAll(utils.NewLogger(), doc, shoppersGridExtractor{})
	if len(raws) != 2 {
		t.Fatalf("expected 2 items (1 skipped), got %d", len(raws))
	}

	first := raws[0]
	if first.Title != "Vitamin C Serum" || first.Brand != "GlowCo" {
		t.Errorf("title/brand = %q / %q", first.Title, first.Brand)
	}
	if first.CurrentPrice != "$23.99" {
		t.Errorf("CurrentPrice = %q", first.CurrentPrice)
	}
	if first.RegularPrice != "$29.99" {
		t.Errorf("RegularPrice = %q", first.RegularPrice)
	}
	if first.PromotionLabel != "Sale, PC Optimum Offer" {
		t.Errorf("PromotionLabel = %q", first.PromotionLabel)
	}
	if len(first.ImageURLs) != 1 || first.ImageURLs[0] != "https://cdn.example.com/serum.jpg" {
		t.Errorf("ImageURLs = %v", first.ImageURLs)
	}

	// No sale price shown: the was-price doubles as the current price.
	second := raws[1]
	if second.CurrentPrice != "$4.49" || second.RegularPrice != "$4.49" {
		t.Errorf("fallback prices = %q / %q", second.CurrentPrice, second.RegularPrice)
	}
}

const shoppersDetailFixture = `
<body>
  <p class="plp__brandName__8MSID"><a href="/brand/glowco">GlowCo</a></p>
  <h1 class="plp__pageHeading__zUcEq">Vitamin C Serum 30ml</h1>
  <div class="pr-snippet-rating-decimal">4.3</div>
  <a class="pr-snippet-review-count">(212 Reviews)</a>
  <p data-testid="price-container">$23.99 <span class="plp__priceStrikeThrough__2MAlQ">$29.99</span></p>
  <ul class="plp__list__1QwAH">
    <li><img class="plp__image__WzRYO" src="https://cdn.example.com/serum-1.jpg"></li>
    <li><img class="plp__image__WzRYO" src="https://cdn.example.com/serum-2.jpg"></li>
  </ul>
  <div class="plp__offerContainer__2pipm">
    <h3>20x the points</h3>
    <span class="plp__date__1U7ai">Offer ends Aug 28, 2026</span>
  </div>
</body>`

func TestShoppersDetailExtractor(t *testing.T) {
	doc, err := scraper.ParseDocument(shoppersDetailFixture)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	raws := scraper.ExtractAll(utils.NewLogger(), doc, shoppersDetailExtractor{})
	if len(raws) != 1 {
		t.Fatalf("expected 1 record, got %d", len(raws))
	}

	p := raws[0]
	if p.Title != "Vitamin C Serum 30ml" || p.Brand != "GlowCo" {
		t.Errorf("title/brand = %q / %q", p.Title, p.Brand)
	}
	if p.CurrentPrice != "$23.99" || p.RegularPrice != "$29.99" {
		t.Errorf("prices = %q / %q", p.CurrentPrice, p.RegularPrice)
	}
	if p.Rating != "4.3" || p.Reviews != "(212 Reviews)" {
		t.Errorf("rating/reviews = %q / %q", p.Rating, p.Reviews)
	}
	if len(p.ImageURLs) != 2 {
		t.Errorf("ImageURLs = %v", p.ImageURLs)
	}
	if p.PromotionLabel != "20x the points" {
		t.Errorf("PromotionLabel = %q", p.PromotionLabel)
	}
	if p.PromotionEnds != "Aug 28, 2026" {
		t.Errorf("PromotionEnds = %q", p.PromotionEnds)
	}
}

func TestShoppersDetailExtractorUnloadedPage(t *testing.T) {
	doc, err := scraper.ParseDocument(`<body><div class="spinner"></div></body>`)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	raws := scraper.ExtractAll(utils.NewLogger(), doc, shoppersDetailExtractor{})
	if len(raws) != 0 {
		t.Fatalf("unloaded page should yield no records, got %d", len(raws))
	}
}

const visionsFixture = `
<ol>
  <li class="item product product-item">
    <a class="product-item-link" href="https://www.visions.ca/p/soundbar-x"> Acme Soundbar X200 </a>
    <span class="special-price"><span class="price-wrapper">$199.99</span></span>
    <span class="old-price"><span class="price-wrapper">$299.99</span></span>
    <span class="vision-tier-price">Save $100.00 instantly</span>
    <div class="pr-snippet-rating-decimal">4.7</div>
    <div class="pr-category-snippet__total">88 Reviews</div>
    <div class="rw-grid-date">Sale Ends: Sep 4, 2026</div>
  </li>
  <li class="item product product-item">
    <a class="product-item-link" href="https://www.visions.ca/p/headphones-y">Bose Headphones Y</a>
    <span class="price-wrapper">$149.99</span>
  </li>
</ol>`

func TestVisionsExtractor(t *testing.T) {
	doc, err := scraper.ParseDocument(visionsFixture)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	raws := scraper.ExtractAll(utils.NewLogger(), doc, visionsExtractor{})
	if len(raws) != 2 {
		t.Fatalf("expected 2 items, got %d", len(raws))
	}

	first := raws[0]
	if first.Title != "Acme Soundbar X200" || first.Brand != "Acme" {
		t.Errorf("title/brand = %q / %q", first.Title, first.Brand)
	}
	if first.CurrentPrice != "$199.99" || first.RegularPrice != "$299.99" {
		t.Errorf("prices = %q / %q", first.CurrentPrice, first.RegularPrice)
	}
	if first.DiscountAmount != "$100.00" {
		t.Errorf("DiscountAmount = %q", first.DiscountAmount)
	}
	if first.Rating != "4.7" || first.Reviews != "88 Reviews" {
		t.Errorf("rating/reviews = %q / %q", first.Rating, first.Reviews)
	}
	if first.PromotionEnds != "Sep 4, 2026" {
		t.Errorf("PromotionEnds = %q", first.PromotionEnds)
	}

	// No sale markup: the plain price wrapper is the regular price.
	second := raws[1]
	if second.CurrentPrice != "" {
		t.Errorf("second CurrentPrice = %q, want empty", second.CurrentPrice)
	}
	if second.RegularPrice != "$149.99" {
		t.Errorf("second RegularPrice = %q", second.RegularPrice)
	}
}

func TestVisionsUnitsDeterministic(t *testing.T) {
	v := &Visions{}
	units := v.Units()

	if len(units) != len(visionsCategories)-len(visionsSkip) {
		t.Fatalf("expected %d units, got %d", len(visionsCategories)-len(visionsSkip), len(units))
	}
	for _, u := range units {
		if u.ID == "cat-36" || u.ID == "cat-18" {
			t.Errorf("skipped category present: %s", u.ID)
		}
	}
	if units[0].ID != "cat-5" || units[0].Category != "Car Tech" {
		t.Errorf("first unit = %s (%s), want cat-5 (Car Tech)", units[0].ID, units[0].Category)
	}

	again := v.Units()
	for i := range units {
		if units[i] != again[i] {
			t.Fatalf("unit order not deterministic at %d: %v vs %v", i, units[i], again[i])
		}
	}
}
