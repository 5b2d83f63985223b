// Package main provides the scan CLI: a one-shot pass over the current
// market that prints detected edges and arbitrage opportunities.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/consensus"
	"github.com/yourusername/sharpline/internal/edge"
	"github.com/yourusername/sharpline/internal/execution"
	"github.com/yourusername/sharpline/internal/lines"
	applogger "github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/provider"
	"github.com/yourusername/sharpline/internal/service"
	"github.com/yourusername/sharpline/internal/vector"
	"github.com/yourusername/sharpline/internal/vectorstore"
)

var (
	configFile string
	arbOnly    bool

	appLog *logrus.Logger
	cfg    *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&arbOnly, "arb-only", false, "Only scan for arbitrage, skip edge detection")
}

var rootCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the current market for edges and arbitrage",
	Long: `Fetches current lines from the odds provider, runs each upcoming game
through the detection pipeline against the local vector store snapshot
and prints anything actionable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = applogger.NewLogger("warn")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd.Context())
	},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runScan(ctx context.Context) error {
	store := vectorstore.New(vectorstore.Options{
		Dimension:    vector.Dimension,
		Path:         cfg.Store.Path,
		RebuildEvery: cfg.Store.RebuildEvery,
		UseIndex:     cfg.Store.UseIndex,
	}, appLog)
	if err := store.Reload(); err != nil {
		return fmt.Errorf("failed to reload vector store: %w", err)
	}

	providerLog := log.New(os.Stderr, "provider: ", log.LstdFlags)
	httpClient := provider.NewRateLimitedHTTPClient(provider.HTTPClientConfig{
		Timeout:           time.Duration(cfg.Providers.OddsAPI.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.Providers.OddsAPI.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         cfg.Providers.OddsAPI.RateLimitPerSec,
		CircuitBreakerMax: 5,
	}, providerLog)
	defer httpClient.Close()

	oddsClient := provider.NewOddsAPIClient(httpClient, cfg.Providers.OddsAPI, providerLog)

	games, err := oddsClient.FetchGameLines(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch lines: %w", err)
	}
	fmt.Printf("Scanning %d upcoming games (store: %d records)\n\n", len(games), store.Len())

	vectorizer := vector.NewVectorizer(vector.DefaultRanges())
	tracker := lines.NewTracker(lines.DefaultConfig(), appLog)
	engine := consensus.NewEngine(store, consensus.Config{
		TopK:          cfg.Detection.TopK,
		MinSimilarity: cfg.Detection.MinSimilarity,
		MinSampleSize: cfg.Detection.MinSampleSize,
	}, appLog)
	classifier := edge.NewClassifier(edge.DefaultConfig(), tracker, appLog)
	planner := execution.NewPlanner(execution.Config{
		KellyFraction: cfg.Execution.KellyFraction,
		Bankroll:      decimal.NewFromFloat(cfg.Execution.Bankroll),
		ArbStake:      decimal.NewFromFloat(cfg.Execution.ArbStake),
	}, appLog)

	svc := service.NewDetectionService(vectorizer, engine, classifier, planner, nil, nil, appLog)

	for _, g := range games {
		tracker.Record(g.GameID, g.Snapshot)

		if arbs := svc.ScanArbitrage(g.HomeTeam, g.AwayTeam, g.Quotes); len(arbs) > 0 {
			for _, arb := range arbs {
				fmt.Printf("ARB  %s @ %s vs %s @ %s: stake %s/%s, profit %s (%s%% ROI)\n",
					arb.SideA.OutcomeSide, arb.SideA.Venue,
					arb.SideB.OutcomeSide, arb.SideB.Venue,
					arb.StakeA, arb.StakeB, arb.GuaranteedProfit, arb.ROIPct)
			}
		}

		if arbOnly {
			continue
		}

		situation := models.NewSituationRecord()
		situation.GameID = g.GameID
		situation.Team = g.HomeTeam
		situation.Opponent = g.AwayTeam
		situation.IsHome = true
		situation.Spread = g.Snapshot.Spread
		situation.LineOpen = g.Snapshot.Spread
		situation.LineCurrent = g.Snapshot.Spread
		if g.Snapshot.Total > 0 {
			situation.TotalLine = g.Snapshot.Total
		}
		if g.Snapshot.HomeML != 0 {
			situation.Moneyline = g.Snapshot.HomeML
		}

		det, err := svc.Detect(ctx, situation)
		if err != nil {
			appLog.WithError(err).WithField("game_id", g.GameID).Warn("Detection failed")
			continue
		}

		switch det.Status {
		case models.StatusInsufficientData:
			fmt.Printf("--   %s vs %s: insufficient history (%d similar)\n", g.HomeTeam, g.AwayTeam, det.SampleSize)
		case models.StatusNoEdge:
			fmt.Printf("--   %s vs %s: no edge (%d similar)\n", g.HomeTeam, g.AwayTeam, det.SampleSize)
		default:
			fmt.Printf("%s  %s vs %s (%d similar, avg sim %.2f)\n",
				det.Status, g.HomeTeam, g.AwayTeam, det.SampleSize, det.AvgSimilarity)
			for _, e := range det.Edges {
				fmt.Printf("     %-9s %-5s edge %+.1f%% (target %.1f%% vs market %.1f%%) conf %.2f",
					e.Type, e.Direction, e.AdvantagePct, e.TargetProb, e.MarketProb, e.Confidence)
				for _, sig := range e.Signals {
					fmt.Printf(" [%s]", sig)
				}
				fmt.Println()
			}
			for _, rec := range svc.Recommend(ctx, situation, det, g.Quotes) {
				fmt.Printf("     BET %s @ %s (%+d): stake %s, EV %+.3f/unit\n",
					rec.Edge.Type, rec.Venue, rec.AmericanOdds, rec.RecommendedStake, rec.EVPerUnit)
			}
		}
	}

	return nil
}
