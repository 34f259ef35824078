package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deals-scraper/models"
	"deals-scraper/services"
	"deals-scraper/storage"
	"deals-scraper/utils"
)

// ErrStoreWrite marks a failed batch write. Unlike unit-level failures, a
// silent storage failure would masquerade as a successful harvest, so it
// aborts the run.
var ErrStoreWrite = errors.New("store write failed")

// Unit is one independently processed piece of work: a page index, a
// category, or a product URL.
type Unit struct {
	ID       string
	Page     int
	URL      string
	Category string
}

// Site is the per-site instantiation of the harvesting pipeline: where its
// units live, how their content stabilizes, and how items come out of the
// markup.
type Site interface {
	Name() string
	// Stabilize returns a markup snapshot for the unit with the maximum
	// reasonably-obtainable set of items. Empty snapshot means the unit
	// holds no listing markup (an exhausted page), which is not an error.
	Stabilize(ctx context.Context, unit Unit) (string, error)
	Extractor() ItemExtractor
	WriteMode() storage.WriteMode
}

// PagedSite additionally knows how to address its catalog by page index.
type PagedSite interface {
	Site
	PageUnit(page int) Unit
}

// Summary reports the outcome of one harvest run.
type Summary struct {
	Site           string
	UnitsAttempted int
	UnitsFailed    int
	Records        int
	Products       []*models.Product
}

// Pipeline is the harvest orchestrator. It drives units strictly
// sequentially: stabilize → extract → normalize → persist, with a
// randomized pacing delay between units.
type Pipeline struct {
	logger     *utils.Logger
	normalizer *services.Normalizer
	store      storage.ProductWriter
	pacer      *utils.Pacer
}

func NewPipeline(logger *utils.Logger, normalizer *services.Normalizer,
	store storage.ProductWriter, pacer *utils.Pacer) *Pipeline {
	return &Pipeline{
		logger:     logger,
		normalizer: normalizer,
		store:      store,
		pacer:      pacer,
	}
}

// maxPageFailStreak bounds open-ended iteration under persistent unit
// failure: without it a site that is down or unparseable would never
// produce the zero-item page that ends the run.
const maxPageFailStreak = 3

// RunPages iterates page indices from start. A non-positive end means
// open-ended iteration; either way the run stops at the first page that
// yields zero items, and an open-ended run additionally stops after
// maxPageFailStreak consecutive failed pages. Only persistence failures
// return an error.
func (p *Pipeline) RunPages(ctx context.Context, site PagedSite, start, end int) (*Summary, error) {
	summary := &Summary{Site: site.Name()}

	failStreak := 0
	for page := start; end <= 0 || page <= end; page++ {
		unit := site.PageUnit(page)
		count, err := p.processUnit(ctx, site, unit, summary)
		switch {
		case err != nil:
			if errors.Is(err, ErrStoreWrite) || errors.Is(err, context.Canceled) {
				return summary, err
			}
			summary.UnitsFailed++
			p.logger.Error("[%s] Unit %s failed: %v", site.Name(), unit.ID, err)
			failStreak++
			if end <= 0 && failStreak >= maxPageFailStreak {
				p.logger.Error("[%s] %d consecutive pages failed — stopping open-ended run",
					site.Name(), failStreak)
				p.logSummary(summary)
				return summary, nil
			}
		case count == 0:
			p.logger.Info("[%s] No products on %s — stopping", site.Name(), unit.ID)
			p.logSummary(summary)
			return summary, nil
		default:
			failStreak = 0
		}

		p.pacer.Wait()
	}

	p.logSummary(summary)
	return summary, nil
}

// RunUnits iterates an explicit unit list (categories or product URLs).
// Per-unit failures are isolated; zero-item units do not stop the run.
func (p *Pipeline) RunUnits(ctx context.Context, site Site, units []Unit) (*Summary, error) {
	summary := &Summary{Site: site.Name()}

	for i, unit := range units {
		_, err := p.processUnit(ctx, site, unit, summary)
		if err != nil {
			if errors.Is(err, ErrStoreWrite) || errors.Is(err, context.Canceled) {
				return summary, err
			}
			summary.UnitsFailed++
			p.logger.Error("[%s] Unit %s failed: %v", site.Name(), unit.ID, err)
		}

		if i < len(units)-1 {
			p.pacer.Wait()
		}
	}

	p.logSummary(summary)
	return summary, nil
}

func (p *Pipeline) processUnit(ctx context.Context, site Site, unit Unit, summary *Summary) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	summary.UnitsAttempted++
	p.logger.Info("[%s] Processing %s", site.Name(), unit.ID)

	html, err := site.Stabilize(ctx, unit)
	if err != nil {
		return 0, fmt.Errorf("stabilize: %w", err)
	}
	if strings.TrimSpace(html) == "" {
		return 0, nil
	}

	doc, err := ParseDocument(html)
	if err != nil {
		return 0, err
	}

	raws := ExtractAll(p.logger, doc, site.Extractor())
	if len(raws) == 0 {
		return 0, nil
	}

	// Detail-page units know their own address better than the markup does.
	if unit.URL != "" {
		for _, r := range raws {
			if strings.TrimSpace(r.URL) == "" {
				r.URL = unit.URL
			}
		}
	}

	products := p.normalizer.Normalize(raws, unit.Category)
	if len(products) == 0 {
		return 0, nil
	}

	if err := p.store.Write(products, site.WriteMode()); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	summary.Records += len(products)
	summary.Products = append(summary.Products, products...)
	p.logger.Info("[%s] %s — %d records persisted (%s)",
		site.Name(), unit.ID, len(products), site.WriteMode())

	return len(products), nil
}

func (p *Pipeline) logSummary(s *Summary) {
	p.logger.Info("[%s] Run complete — units: %d attempted, %d failed | records: %d",
		s.Site, s.UnitsAttempted, s.UnitsFailed, s.Records)
}
