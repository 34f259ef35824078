package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"deals-scraper/models"
	"deals-scraper/utils"
)

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

func (s *ReportService) Generate(products []*models.Product) *models.HarvestReport {
	report := &models.HarvestReport{
		ProductsByCategory: make(map[string]int),
	}

	if len(products) == 0 {
		return report
	}

	report.TotalProducts = len(products)

	var discounted []*models.Product
	var rated []*models.Product

	for _, p := range products {
		if p.DiscountPercent.Valid && p.DiscountPercent.Decimal.IsPositive() {
			discounted = append(discounted, p)
		}
		if p.Rating.IsPositive() {
			rated = append(rated, p)
		}
		if p.Category != "" {
			report.ProductsByCategory[p.Category]++
		}
	}

	// Discount stats (only products with a derived positive discount)
	if len(discounted) > 0 {
		report.DiscountedProducts = len(discounted)
		report.DeepestDiscount = discounted[0]

		var total float64
		for _, p := range discounted {
			pct, _ := p.DiscountPercent.Decimal.Float64()
			total += pct
			deepest, _ := report.DeepestDiscount.DiscountPercent.Decimal.Float64()
			if pct > deepest {
				report.DeepestDiscount = p
			}
		}
		report.AvgDiscountPercent = round2(total / float64(len(discounted)))
	}

	// Top 5 by rating
	sort.Slice(rated, func(i, j int) bool {
		return rated[i].Rating.GreaterThan(rated[j].Rating)
	})
	if len(rated) > 5 {
		report.TopRated = rated[:5]
	} else {
		report.TopRated = rated
	}

	return report
}

func (s *ReportService) Print(r *models.HarvestReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 HARVEST REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total products stored  : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Printf("  Discounted products    : \033[1m%d\033[0m\n", r.DiscountedProducts)
	fmt.Println()

	// Discount Stats
	fmt.Printf("\033[1;33m  Discount Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.DiscountedProducts > 0 {
		fmt.Printf("  Average discount : \033[1;32m%.2f%%\033[0m\n", r.AvgDiscountPercent)
	} else {
		fmt.Printf("  No discount data available\n")
	}
	fmt.Println()

	// Deepest Discount
	if r.DeepestDiscount != nil {
		p := r.DeepestDiscount
		fmt.Printf("\033[1;33m  Deepest Discount\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(p.Title, 50))
		if p.CurrentPrice.Valid && p.RegularPrice.Valid {
			fmt.Printf("  Price    : \033[1;31m$%s\033[0m (was $%s)\n",
				p.CurrentPrice.Decimal.StringFixed(2), p.RegularPrice.Decimal.StringFixed(2))
		}
		fmt.Printf("  Discount : \033[1;32m%s%%\033[0m\n", p.DiscountPercent.Decimal.StringFixed(2))
		fmt.Println()
	}

	// Top 5 by rating
	fmt.Printf("\033[1;33m  Top 5 Highest Rated Products\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Printf("  No rated products found\n")
	} else {
		for i, p := range r.TopRated {
			title := truncate(p.Title, 38)
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%s ★\033[0m (%d reviews)\n",
				i+1, title, p.Rating.StringFixed(2), p.ReviewCount)
		}
	}
	fmt.Println()

	// Products by Category
	fmt.Printf("\033[1;33m  Products by Category\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ProductsByCategory) == 0 {
		fmt.Printf("  No category data\n")
	} else {
		type catCount struct {
			cat   string
			count int
		}
		var cats []catCount
		for cat, cnt := range r.ProductsByCategory {
			cats = append(cats, catCount{cat, cnt})
		}
		sort.Slice(cats, func(i, j int) bool {
			return cats[i].count > cats[j].count
		})
		for _, cc := range cats {
			fmt.Printf("  %-30s %d\n", truncate(cc.cat, 28), cc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// truncate shortens s to max runes, never splitting a multi-byte rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
