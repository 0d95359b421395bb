package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"store-locator-be/internal/config"
	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/internal/repository/unitofwork"
	"store-locator-be/internal/service"
	"store-locator-be/pkg/database"
	"store-locator-be/pkg/discovery"
	"store-locator-be/pkg/enrich"
	"store-locator-be/pkg/events"
	"store-locator-be/pkg/geo/overpass"
	"store-locator-be/pkg/llm/factory"
	"store-locator-be/pkg/metadata"
	pktNats "store-locator-be/pkg/nats"
	"store-locator-be/pkg/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	lat      float64
	lng      float64
	enrichOn bool
	verbose  bool

	historyKind  string
	historyLimit int
	historySince time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "probe",
	Short:         "Run store discovery against the live mirrors",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Discover stores around a coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch("")
	},
}

var keywordCmd = &cobra.Command{
	Use:   "keyword <word>",
	Short: "Targeted search by keyword (e.g. fuel, pharmacy)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(args[0])
	},
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print interaction events from NATS until interrupted",
	RunE:  runTail,
}

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List logged interactions from the database, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().Float64Var(&lat, "lat", 10.7769, "latitude")
	rootCmd.PersistentFlags().Float64Var(&lng, "lng", 106.7009, "longitude")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write pipeline logs to logs/probe.log")
	rootCmd.PersistentFlags().BoolVar(&enrichOn, "enrich", false, "enrich results with Gemini (needs GEMINI_API_KEY)")

	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only this kind (search, keyword, chat)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", service.DefaultHistoryLimit, "maximum rows")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only rows newer than this (e.g. 24h)")

	rootCmd.AddCommand(nearbyCmd, keywordCmd, tailCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newLogger() logger.ILogger {
	if verbose {
		return logger.NewIsolatedLogger("logs/probe.log")
	}
	return logger.NewNop()
}

func runSearch(keyword string) error {
	cfg := config.Load()
	log := newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var enricher discovery.StoreEnricher
	if enrichOn {
		enricher = enrich.NewEnricher(factory.NewEnrichmentProvider(ctx, cfg.Ai, log), cfg.Ai.EnrichTimeout, log)
	}

	pipeline := discovery.NewPipeline(
		overpass.NewFetcher(cfg.Geo.Mirrors, cfg.Geo.RequestTimeout, log),
		metadata.NewSynthesizer(rand.NewSource(time.Now().UnixNano())),
		enricher,
		discovery.Options{
			Radius:        cfg.Geo.Radius,
			MaxResults:    cfg.Geo.MaxResults,
			KeywordRadius: cfg.Geo.KeywordRadius,
			KeywordLimit:  cfg.Geo.KeywordLimit,
			EnrichLimit:   cfg.Geo.EnrichLimit,
		},
		log,
	)

	start := time.Now()
	var stores []store.Store
	if keyword != "" {
		color.Cyan("🔎 Keyword search %q around (%.5f, %.5f)", keyword, lat, lng)
		stores = pipeline.SearchByKeyword(ctx, lat, lng, keyword, 0)
	} else {
		color.Cyan("📍 Nearby discovery around (%.5f, %.5f)", lat, lng)
		stores = pipeline.DiscoverNearby(ctx, lat, lng, 0, 0)
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	switch {
	case len(stores) == 0:
		color.Red("No stores found (%s)", elapsed)
		return nil
	case discovery.IsMock(stores):
		color.Yellow("No usable results from the mirrors, mock data served (%s)", elapsed)
	default:
		color.Green("%d stores in %s", len(stores), elapsed)
	}

	for i, s := range stores {
		printStore(i, s)
	}
	return nil
}

func printStore(i int, s store.Store) {
	title := color.New(color.FgWhite, color.Bold).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%2d. %s %s\n", i+1, title(s.Name), dim("#"+s.ID))
	fmt.Printf("    %s · %.2f km · ⭐ %.1f (%d) · %s\n", s.TypeDisplay, s.DistanceKm, s.Rating, s.ReviewsCount, s.OpenHour)
	fmt.Printf("    %s\n", s.Address)
	fmt.Printf("    %s\n", dim(s.Description))
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, newLogger())
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, pktNats.Subject(">"), "", func(ctx context.Context, evt events.Event) error {
		payload, _ := json.Marshal(evt.Payload())
		color.Magenta("[%s] %s", evt.Timestamp().Format(time.TimeOnly), evt.EventType())
		fmt.Println(string(payload))
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan("Tailing %s (Ctrl-C to stop)", pktNats.Subject(">"))
	<-ctx.Done()
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, verbose)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	q := dto.InteractionHistoryQuery{Kind: historyKind, Limit: historyLimit}
	if len(args) == 1 {
		q.SessionID = args[0]
	}
	if historySince > 0 {
		q.Since = time.Now().Add(-historySince)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := service.NewHistoryService(unitofwork.NewRepositoryFactory(db)).ListInteractions(ctx, q)
	if err != nil {
		return err
	}

	color.Cyan("%d matching interactions, showing %d", res.Total, len(res.Items))
	dim := color.New(color.FgHiBlack).SprintFunc()
	for _, it := range res.Items {
		line := fmt.Sprintf("[%s] %-7s %s", it.OccurredAt.Local().Format(time.DateTime), it.Kind, dim(it.SessionID))
		if it.Mock {
			line += color.YellowString(" mock")
		}
		fmt.Println(line)
		switch {
		case it.Message != "":
			fmt.Printf("    > %s\n    < %s\n", it.Message, it.Reply)
		case it.Keyword != "":
			fmt.Printf("    keyword %q\n", it.Keyword)
		}
		fmt.Printf("    %d stores %s\n", len(it.StoreIDs), dim(it.SuggestedID))
	}
	return nil
}
