// Package main provides the backfill CLI: it loads completed games from a
// JSON export into the vector store and the database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/lines"
	applogger "github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/service"
	"github.com/yourusername/sharpline/internal/vector"
	"github.com/yourusername/sharpline/internal/vectorstore"
)

var (
	configFile string
	inputFile  string
	skipDB     bool

	appLog *logrus.Logger
	cfg    *config.Config
)

// backfillEntry is one completed game in the input export.
type backfillEntry struct {
	Situation models.SituationRecord `json:"situation"`
	Outcome   models.Outcome         `json:"outcome"`
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Path to JSON export of completed games (required)")
	rootCmd.Flags().BoolVar(&skipDB, "skip-db", false, "Write only the vector store snapshot, not the database")
	rootCmd.MarkFlagRequired("input")
}

var rootCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Load completed games into the historical vector store",
	Long: `Reads a JSON export of completed situations and outcomes, vectorizes
each entry and appends it to the vector store and (unless --skip-db)
the historical_records table.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackfill(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runBackfill(ctx context.Context) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var entries []backfillEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse input file: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("input file contains no entries")
	}

	store := vectorstore.New(vectorstore.Options{
		Dimension:    vector.Dimension,
		Path:         cfg.Store.Path,
		RebuildEvery: cfg.Store.RebuildEvery,
		UseIndex:     cfg.Store.UseIndex,
	}, appLog)
	if err := store.Reload(); err != nil {
		return fmt.Errorf("failed to reload vector store: %w", err)
	}

	var histRepo repository.HistoricalRecordRepository
	if !skipDB {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		histRepo = repos.HistoricalRecord
	}

	vectorizer := vector.NewVectorizer(vector.DefaultRanges())
	tracker := lines.NewTracker(lines.DefaultConfig(), appLog)
	svc := service.NewIngestionService(vectorizer, store, tracker, histRepo, nil, nil, nil, appLog)

	pairs := make([]service.OutcomePair, len(entries))
	for i, e := range entries {
		pairs[i] = service.OutcomePair{Situation: e.Situation, Outcome: e.Outcome}
	}

	inserted, err := svc.RecordOutcomeBatch(ctx, pairs)
	if err != nil {
		return err
	}

	store.RebuildIndex()
	if err := svc.PersistStore(); err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{
		"input":    inputFile,
		"inserted": inserted,
		"skipped":  len(entries) - inserted,
		"total":    store.Len(),
	}).Info("Backfill complete")

	return nil
}
