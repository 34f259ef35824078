package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"deals-scraper/config"
	"deals-scraper/scraper"
	"deals-scraper/scraper/sites"
	"deals-scraper/services"
	"deals-scraper/storage"
	"deals-scraper/utils"
)

func main() {
	siteFlag := flag.String("site", "canadacomputers", "site to harvest: canadacomputers | shoppers | visions")
	pagesFlag := flag.String("pages", "all", "page range: all | N | N-M")
	urlsFlag := flag.String("urls", "", "file with one product URL per line (shoppers detail mode)")
	replayFlag := flag.String("replay", "", "JSON dump to load into PostgreSQL instead of harvesting")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetVerbose(cfg.Verbose)

	logger.Info("=== Deals Harvesting System starting ===")
	logger.Info("Config — pacing: %d-%dms | stability threshold: %d | settle: %dms",
		cfg.PaceMinMs, cfg.PaceMaxMs, cfg.StabilityThreshold, cfg.SettleDelayMs)

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	if *replayFlag != "" {
		if err := replay(logger, pgWriter, *replayFlag); err != nil {
			logger.Error("Replay failed: %v", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startPage, endPage, err := parsePageRange(*pagesFlag)
	if err != nil {
		logger.Error("Invalid -pages value %q: %v", *pagesFlag, err)
		os.Exit(1)
	}

	pacer := utils.NewPacer(
		time.Duration(cfg.PaceMinMs)*time.Millisecond,
		time.Duration(cfg.PaceMaxMs)*time.Millisecond,
	)
	normalizer := services.NewNormalizer(logger)
	pipeline := scraper.NewPipeline(logger, normalizer, pgWriter, pacer)

	summary, err := run(ctx, cfg, logger, pipeline, *siteFlag, *urlsFlag, startPage, endPage)
	if summary != nil {
		logger.Info("Run summary — site: %s | units: %d (%d failed) | records: %d",
			summary.Site, summary.UnitsAttempted, summary.UnitsFailed, summary.Records)
	}
	if err != nil {
		logger.Error("Harvest aborted: %v", err)
		os.Exit(1)
	}
	if summary == nil || summary.Records == 0 {
		logger.Error("No products were harvested. Exiting.")
		os.Exit(1)
	}

	jsonWriter, err := storage.NewJSONWriter(cfg.JSONOutputPath)
	if err != nil {
		logger.Error("Failed to create JSON writer: %v", err)
	} else if err := jsonWriter.Dump(summary.Products); err != nil {
		logger.Error("JSON dump failed: %v", err)
	} else {
		logger.Info("Harvested products saved to %s", jsonWriter.Path())
	}

	dbProducts, err := pgWriter.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch products from DB for report: %v", err)
		dbProducts = summary.Products
	}

	reportSvc := services.NewReportService(logger)
	report := reportSvc.Generate(dbProducts)
	reportSvc.Print(report)

	fmt.Printf("  Done. JSON dump → %s | Products → PostgreSQL (products table)\n\n",
		cfg.JSONOutputPath)
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger,
	pipeline *scraper.Pipeline, siteName, urlsPath string, startPage, endPage int) (*scraper.Summary, error) {

	scroll := scraper.ScrollOptions{
		Threshold:    cfg.StabilityThreshold,
		SettleDelay:  time.Duration(cfg.SettleDelayMs) * time.Millisecond,
		LoadMoreWait: time.Duration(cfg.SettleDelayMs) * time.Millisecond,
	}

	switch siteName {
	case "canadacomputers":
		return pipeline.RunPages(ctx, sites.NewCanadaComputers(logger), startPage, endPage)

	case "shoppers":
		session, err := scraper.NewSession(cfg, logger)
		if err != nil {
			return nil, err
		}
		defer session.Close()
		stab := scraper.NewStabilizer(logger)

		if urlsPath != "" {
			urls, err := readURLFile(urlsPath)
			if err != nil {
				return nil, err
			}
			site := sites.NewShoppersDetail(session, stab, scroll)
			return pipeline.RunUnits(ctx, site, site.URLUnits(urls))
		}
		return pipeline.RunPages(ctx, sites.NewShoppersGrid(session, stab, scroll), startPage, endPage)

	case "visions":
		session, err := scraper.NewSession(cfg, logger)
		if err != nil {
			return nil, err
		}
		defer session.Close()
		site := sites.NewVisions(session, scraper.NewStabilizer(logger), scroll)
		return pipeline.RunUnits(ctx, site, site.Units())

	default:
		return nil, fmt.Errorf("unknown site %q", siteName)
	}
}

// replay loads a previous JSON dump into PostgreSQL, upserting by URL.
func replay(logger *utils.Logger, pgWriter *storage.PostgresWriter, path string) error {
	products, err := storage.ReadProducts(path)
	if err != nil {
		return err
	}
	logger.Info("Replaying %d products from %s", len(products), path)
	if err := pgWriter.Write(products, storage.ModeUpsert); err != nil {
		return err
	}
	logger.Info("Replay complete — products upserted into PostgreSQL")
	return nil
}

// parsePageRange turns "all", "N" or "N-M" into inclusive page bounds.
// End 0 means open-ended.
func parsePageRange(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return 1, 0, nil
	}

	if lo, hi, ok := strings.Cut(s, "-"); ok {
		start, err = strconv.Atoi(lo)
		if err != nil {
			return 0, 0, err
		}
		end, err = strconv.Atoi(hi)
		if err != nil {
			return 0, 0, err
		}
		if start < 1 || end < start {
			return 0, 0, fmt.Errorf("range must satisfy 1 <= start <= end")
		}
		return start, end, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, err
	}
	if n < 1 {
		return 0, 0, fmt.Errorf("page count must be positive")
	}
	return 1, n, nil
}

func readURLFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, nil
}
