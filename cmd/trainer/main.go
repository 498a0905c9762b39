package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/classifier"
	"github.com/reviewlens/backend/internal/corpus/sqlite"
	"github.com/reviewlens/backend/internal/trainer"
	"github.com/reviewlens/backend/pkg/config"
	appLogger "github.com/reviewlens/backend/pkg/logger"
)

func main() {
	corpusPath := flag.String("corpus", "", "corpus database path (default from config)")
	modelsDir := flag.String("models", "", "output directory for model artifacts (default from config)")
	flag.Parse()

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

	if *corpusPath == "" {
		*corpusPath = cfg.Corpus.Path
	}
	if *modelsDir == "" {
		*modelsDir = cfg.Models.Dir
	}

	corpus, err := sqlite.NewClient(*corpusPath)
	if err != nil {
		appLogger.Fatal("Failed to open corpus", zap.Error(err))
	}
	defer corpus.Close()

	if err := corpus.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize corpus schema", zap.Error(err))
	}

	scraped, err := corpus.ListScrapedReviews()
	if err != nil {
		appLogger.Fatal("Failed to read scraped reviews", zap.Error(err))
	}
	if len(scraped) == 0 {
		appLogger.Fatal("Corpus is empty; run the scraper first")
	}

	labeled := trainer.BootstrapLabels(scraped)
	appLogger.Info("Labels bootstrapped",
		zap.Int("scraped", len(scraped)), zap.Int("labeled", len(labeled)))

	if err := corpus.ReplaceLabeledReviews(labeled); err != nil {
		appLogger.Fatal("Failed to store labeled corpus", zap.Error(err))
	}

	docs := make([]string, len(labeled))
	sentiments := make([]string, len(labeled))
	authenticities := make([]string, len(labeled))
	for i, r := range labeled {
		docs[i] = r.Body
		sentiments[i] = r.Sentiment
		authenticities[i] = r.Authenticity
	}

	opts := trainer.DefaultOptions()

	axes := []struct {
		axis          classifier.Axis
		labels        []string
		positiveClass string
	}{
		{classifier.AxisSentiment, sentiments, "positive"},
		{classifier.AxisAuthenticity, authenticities, "genuine"},
	}

	for _, a := range axes {
		vec, model, report, err := trainer.Fit(docs, a.labels, a.positiveClass, a.axis, opts)
		if err != nil {
			appLogger.Fatal("Training failed",
				zap.String("axis", string(a.axis)), zap.Error(err))
		}

		if err := classifier.SaveArtifacts(*modelsDir, a.axis, vec, model); err != nil {
			appLogger.Fatal("Failed to save artifacts",
				zap.String("axis", string(a.axis)), zap.Error(err))
		}

		appLogger.Info("Artifacts saved",
			zap.String("axis", string(a.axis)),
			zap.String("dir", *modelsDir),
			zap.Float64("accuracy", report.Accuracy),
		)
	}
}
