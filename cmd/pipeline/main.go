package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/config"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/logger"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/providers"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/services"
	"github.com/slapshot-labs/fantasy-hockey-pipeline/internal/storage"
)

func main() {
	var (
		schedule   = flag.Bool("schedule", false, "run on the configured cron schedule instead of once")
		quickCheck = flag.Bool("quick-check", false, "run a bounded quick check instead of a full analysis")
		cleanup    = flag.Bool("cleanup", false, "prune old snapshots and exit")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log.WithField("service", cfg.ServiceName).Info("Starting fantasy hockey pipeline")

	store, err := storage.NewStore(cfg.Storage, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize snapshot store")
	}

	cache := services.NewCacheService(cfg.Redis, log)
	defer cache.Close()

	provider := providers.NewESPNClient(cfg.ESPN, log)
	aiClient := services.NewOpenAIClient(cfg.OpenAI, log)

	engine := services.NewScoringEngine(cfg.Scoring.Categories)
	allStars := services.LoadAllStarTable(cfg.Storage.AllStarFile, log)
	ranker := services.NewRanker(engine, allStars, cfg.Analysis, log)
	swaps := services.NewSwapEvaluator(engine, allStars, cfg.Swap, log)
	narrative := services.NewNarrativeGenerator(aiClient, cache, cfg.OpenAI.TopInsights, log)

	pipeline := services.NewPipeline(provider, engine, ranker, swaps, narrative, store, cache, cfg.Pipeline, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *cleanup:
		if err := pipeline.Cleanup(); err != nil {
			log.WithError(err).Fatal("Snapshot cleanup failed")
		}
		log.Info("Snapshot cleanup complete")

	case *quickCheck:
		set, err := pipeline.QuickCheck(ctx)
		if err != nil {
			log.WithError(err).Fatal("Quick check failed")
		}
		for i, rec := range set.Players {
			log.WithFields(map[string]interface{}{
				"rank":        i + 1,
				"player":      rec.Player.Name,
				"position":    rec.Player.Position,
				"value_score": rec.Analysis.ValueScore,
			}).Info("Quick check pickup")
		}

	case *schedule:
		scheduler := services.NewScheduler(pipeline, cfg.Pipeline, log)
		if err := scheduler.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start scheduler")
		}
		log.Info("Scheduler running, waiting for shutdown signal")
		<-ctx.Done()
		log.Info("Shutdown signal received, stopping scheduler")
		scheduler.Stop()

	default:
		result, err := pipeline.RunFullAnalysis(ctx)
		if err != nil {
			log.WithError(err).Fatal("Analysis run failed")
		}
		log.WithFields(map[string]interface{}{
			"run_id":          result.RunID,
			"team":            result.TeamName,
			"recommendations": result.RecommendationsCount,
			"top_pickup":      result.TopRecommendation,
		}).Info("Analysis run complete")
	}
}
