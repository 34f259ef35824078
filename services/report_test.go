package services

import (
	"testing"

	"deals-scraper/models"
)

func sampleProducts(t *testing.T) []*models.Product {
	t.Helper()
	mk := func(url, title, cat, current, regular, rating string, reviews int) *models.Product {
		amount, percent := ComputeDiscount(ParseMoney(current), ParseMoney(regular))
		return &models.Product{
			URL:             url,
			Title:           title,
			Category:        cat,
			CurrentPrice:    ParseMoney(current),
			RegularPrice:    ParseMoney(regular),
			DiscountAmount:  amount,
			DiscountPercent: percent,
			Rating:          ParseRating(rating),
			ReviewCount:     reviews,
		}
	}

	return []*models.Product{
		mk("https://example.com/p/1", "TV A", "Television", "400", "800", "4.9", 12),
		mk("https://example.com/p/2", "TV B", "Television", "90", "100", "4.5", 3),
		mk("https://example.com/p/3", "Soundbar C", "Home Audio", "150", "200", "4.8", 7),
		mk("https://example.com/p/4", "Laptop D", "Laptops", "999", "", "0", 0),
		mk("https://example.com/p/5", "Camera E", "Cameras", "250", "250", "4.7", 2),
	}
}

func TestReportCounts(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(sampleProducts(t))

	if r.TotalProducts != 5 {
		t.Errorf("TotalProducts = %d; want 5", r.TotalProducts)
	}
	// Laptop has no regular price, Camera has a 0% discount.
	if r.DiscountedProducts != 3 {
		t.Errorf("DiscountedProducts = %d; want 3", r.DiscountedProducts)
	}
	if r.ProductsByCategory["Television"] != 2 {
		t.Errorf("Television count = %d; want 2", r.ProductsByCategory["Television"])
	}
}

func TestReportDiscountStats(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(sampleProducts(t))

	// (50 + 10 + 25) / 3
	if r.AvgDiscountPercent != 28.33 {
		t.Errorf("AvgDiscountPercent = %.2f; want 28.33", r.AvgDiscountPercent)
	}
	if r.DeepestDiscount == nil || r.DeepestDiscount.Title != "TV A" {
		t.Errorf("DeepestDiscount = %+v; want TV A", r.DeepestDiscount)
	}
}

func TestReportTopRated(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(sampleProducts(t))

	if len(r.TopRated) != 4 {
		t.Fatalf("TopRated length = %d; want 4", len(r.TopRated))
	}
	if r.TopRated[0].Title != "TV A" {
		t.Errorf("best rated = %q; want TV A", r.TopRated[0].Title)
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 28, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a very long product title that keeps going", 10, "a very ..."},
		{"Téléviseur incurvé 55 pouces ultra haute définition", 10, "Télévis..."},
		{"ノイズキャンセリングヘッドホン ワイヤレス", 10, "ノイズキャンセ..."},
	}

	for _, c := range cases {
		got := truncate(c.in, c.max)
		if got != c.want {
			t.Errorf("truncate(%q, %d) = %q; want %q", c.in, c.max, got, c.want)
		}
		for _, r := range got {
			if r == '�' {
				t.Errorf("truncate(%q, %d) split a rune: %q", c.in, c.max, got)
			}
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{28.333333, 28.33},
		{28.336, 28.34},
		{0, 0},
		{-12.345, -12.35},
		{-12.344, -12.34},
	}
	for _, c := range cases {
		if got := round2(c.in); got != c.want {
			t.Errorf("round2(%v) = %v; want %v", c.in, got, c.want)
		}
	}
}

func TestReportEmptyInput(t *testing.T) {
	svc := NewReportService(newTestLogger())
	r := svc.Generate(nil)

	if r.TotalProducts != 0 || r.DeepestDiscount != nil || len(r.TopRated) != 0 {
		t.Errorf("empty input should produce a zero report, got %+v", r)
	}
}
