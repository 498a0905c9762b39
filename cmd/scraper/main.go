package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/corpus/sqlite"
	"github.com/reviewlens/backend/internal/scraper"
	"github.com/reviewlens/backend/pkg/config"
	appLogger "github.com/reviewlens/backend/pkg/logger"
)

func main() {
	pages := flag.Int("pages", 0, "number of review pages to fetch (default from config)")
	corpusPath := flag.String("corpus", "", "corpus database path (default from config)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: scraper [flags] <product-reviews-url>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	url := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, "console", cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if *pages == 0 {
		*pages = cfg.Scraper.Pages
	}
	if *corpusPath == "" {
		*corpusPath = cfg.Corpus.Path
	}

	corpus, err := sqlite.NewClient(*corpusPath)
	if err != nil {
		appLogger.Fatal("Failed to open corpus", zap.Error(err))
	}
	defer corpus.Close()

	if err := corpus.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize corpus schema", zap.Error(err))
	}

	s := scraper.New(cfg.Scraper)

	appLogger.Info("Scraping reviews",
		zap.String("url", url), zap.Int("pages", *pages))

	reviews, err := s.ScrapeProduct(context.Background(), url, *pages)
	if err != nil {
		appLogger.Fatal("Scrape failed", zap.Error(err))
	}

	inserted := 0
	for i := range reviews {
		ok, err := corpus.InsertScrapedReview(&reviews[i])
		if err != nil {
			appLogger.Fatal("Failed to store review", zap.Error(err))
		}
		if ok {
			inserted++
		}
	}

	total, err := corpus.CountScrapedReviews()
	if err != nil {
		appLogger.Fatal("Failed to count corpus", zap.Error(err))
	}

	appLogger.Info("Scrape complete",
		zap.Int("scraped", len(reviews)),
		zap.Int("new", inserted),
		zap.Int("corpus_total", total),
	)
}
