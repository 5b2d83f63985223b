// Package main provides the entry point for the edge detection daemon.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/consensus"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/edge"
	"github.com/yourusername/sharpline/internal/execution"
	"github.com/yourusername/sharpline/internal/health"
	"github.com/yourusername/sharpline/internal/lines"
	applogger "github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/provider"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/scheduler"
	"github.com/yourusername/sharpline/internal/service"
	"github.com/yourusername/sharpline/internal/vector"
	"github.com/yourusername/sharpline/internal/vectorstore"

	"github.com/shopspring/decimal"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := applogger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Sharpline edge detector starting")

	var audit *applogger.AuditLogger
	if cfg.Features.AuditLoggingEnabled {
		audit = applogger.NewAuditLogger(appLog)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection and schema
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	// Vector store: reload from disk first, then top up from the database.
	store := vectorstore.New(vectorstore.Options{
		Dimension:    vector.Dimension,
		Path:         cfg.Store.Path,
		RebuildEvery: cfg.Store.RebuildEvery,
		UseIndex:     cfg.Store.UseIndex,
	}, appLog)
	if err := store.Reload(); err != nil {
		appLog.WithError(err).Fatal("Failed to reload vector store")
	}

	trackerCfg := lines.DefaultConfig()
	trackerCfg.HistoryCap = cfg.Lines.HistoryCap
	trackerCfg.SharpVelocityThreshold = cfg.Lines.SharpVelocityThreshold
	trackerCfg.MinVelocitySpan = cfg.Lines.MinVelocitySpan()
	tracker := lines.NewTracker(trackerCfg, appLog)

	// Providers
	providerLog := log.New(os.Stdout, "provider: ", log.LstdFlags)
	oddsHTTP := provider.NewRateLimitedHTTPClient(provider.HTTPClientConfig{
		Timeout:           time.Duration(cfg.Providers.OddsAPI.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.Providers.OddsAPI.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.Providers.OddsAPI.RateLimitPerSec,
		CircuitBreakerMax: 5,
	}, providerLog)
	defer oddsHTTP.Close()

	oddsClient := provider.NewOddsAPIClient(oddsHTTP, cfg.Providers.OddsAPI, providerLog)

	scoresHTTP := provider.NewRateLimitedHTTPClient(provider.HTTPClientConfig{
		Timeout:           time.Duration(cfg.Providers.Scores.TimeoutSeconds) * time.Second,
		MaxRetries:        2,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         5,
		CircuitBreakerMax: 5,
	}, providerLog)
	defer scoresHTTP.Close()

	scoresClient := provider.NewScoreboardClient(scoresHTTP, cfg.Providers.Scores, providerLog)

	// Pipeline
	vectorizer := vector.NewVectorizer(vector.DefaultRanges())
	engine := consensus.NewEngine(store, consensus.Config{
		TopK:          cfg.Detection.TopK,
		MinSimilarity: cfg.Detection.MinSimilarity,
		MinSampleSize: cfg.Detection.MinSampleSize,
	}, appLog)

	var classifierTracker *lines.Tracker
	if cfg.Features.SignalBoostsEnabled {
		classifierTracker = tracker
	}
	classifier := edge.NewClassifier(edge.Config{
		EdgeThreshold:       cfg.Detection.EdgeThreshold,
		StrongEdgeThreshold: cfg.Detection.StrongEdgeThreshold,
		ConfidenceSample:    float64(cfg.Detection.ConfidenceSample),
		ConfidenceCeiling:   10,
		RLMTrigger:          cfg.Detection.RLMTrigger,
		RLMBoost:            cfg.Detection.RLMBoost,
		SteamBoost:          cfg.Detection.SteamBoost,
		SteamThresholdPts:   cfg.Lines.SteamThresholdPts,
		SteamWindow:         cfg.Lines.SteamWindow(),
	}, classifierTracker, appLog)

	planner := execution.NewPlanner(execution.Config{
		KellyFraction: cfg.Execution.KellyFraction,
		Bankroll:      decimal.NewFromFloat(cfg.Execution.Bankroll),
		ArbStake:      decimal.NewFromFloat(cfg.Execution.ArbStake),
	}, appLog)

	ingestionSvc := service.NewIngestionService(vectorizer, store, tracker,
		repos.HistoricalRecord, repos.LineSnapshot, oddsClient, scoresClient, appLog)
	detectionSvc := service.NewDetectionService(vectorizer, engine, classifier, planner,
		repos.Detection, audit, appLog)

	// Top up the store from the database when the disk snapshot lags behind.
	if count, err := repos.HistoricalRecord.Count(ctx); err == nil && count > store.Len() {
		if loaded, err := ingestionSvc.SeedStore(ctx); err != nil {
			appLog.WithError(err).Warn("Failed to seed vector store from database")
		} else {
			appLog.WithField("loaded", loaded).Info("Vector store seeded from database")
		}
	}

	// Metrics server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := ":" + strconv.Itoa(cfg.Metrics.Port)
			appLog.WithField("addr", addr).Info("Metrics server starting")
			if err := http.ListenAndServe(addr, mux); err != nil {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// Health server
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Health.Port),
		Logger:      appLog,
		DB:          db,
		Store:       store,
		LastFetch:   ingestionSvc.LastPoll,
	})
	if err := healthSrv.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	// Detection over every polled game, from the home team's perspective.
	onGames := func(jobCtx context.Context, games []provider.GameLines) {
		for _, g := range games {
			situation := situationFromGame(tracker, g)
			if err := ingestionSvc.EnrichSituation(jobCtx, &situation); err != nil {
				appLog.WithError(err).WithField("team", situation.Team).Debug("Form enrichment unavailable")
			}

			det, err := detectionSvc.Detect(jobCtx, situation)
			if err != nil {
				appLog.WithError(err).WithField("game_id", g.GameID).Error("Detection failed")
				continue
			}
			if det.Status == models.StatusStrongEdge || det.Status == models.StatusModerateEdge {
				detectionSvc.Recommend(jobCtx, situation, det, g.Quotes)
			}

			if cfg.Features.ArbitrageScanEnabled {
				detectionSvc.ScanArbitrage(g.HomeTeam, g.AwayTeam, g.Quotes)
			}
		}
	}

	// Scheduler
	sched := scheduler.NewScheduler(ingestionSvc, store, appLog)
	if err := sched.ScheduleLinePolling(cfg.Schedule.OddsPollCron, onGames); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule line polling")
	}
	if err := sched.ScheduleStorePersist(cfg.Schedule.StorePersistCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule store persistence")
	}
	if err := sched.ScheduleIndexRebuild(cfg.Schedule.IndexRebuildCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule index rebuild")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	// Streaming line feed
	if cfg.Providers.LineFeed.Enabled {
		feed := provider.NewLineFeedClient(cfg.Providers.LineFeed.URL, providerLog)
		feed.AddHandler(provider.TrackerHandler(tracker))
		go func() {
			if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithError(err).Error("Line feed terminated")
			}
		}()
	}

	healthSrv.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"store_records": store.Len(),
		"next_poll":     sched.GetNextRun().Format(time.RFC3339),
	}).Info("Edge detector running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthSrv.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	if err := ingestionSvc.PersistStore(); err != nil {
		appLog.WithError(err).Error("Failed to persist vector store on shutdown")
	}

	appLog.Info("Edge detector shut down successfully")
}

// situationFromGame builds the home-side situation for a polled game,
// pulling line open from the oldest tracked snapshot.
func situationFromGame(tracker *lines.Tracker, g provider.GameLines) models.SituationRecord {
	s := models.NewSituationRecord()
	s.GameID = g.GameID
	s.Team = g.HomeTeam
	s.Opponent = g.AwayTeam
	s.IsHome = true
	s.Spread = g.Snapshot.Spread
	s.LineCurrent = g.Snapshot.Spread
	if g.Snapshot.Total > 0 {
		s.TotalLine = g.Snapshot.Total
	}
	if g.Snapshot.HomeML != 0 {
		s.Moneyline = g.Snapshot.HomeML
	}

	if snaps := tracker.Snapshots(g.GameID); len(snaps) > 0 {
		s.LineOpen = snaps[0].Spread
	} else {
		s.LineOpen = g.Snapshot.Spread
	}
	return s
}
