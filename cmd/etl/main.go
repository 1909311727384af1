// Command etl scrapes the OROBNAT water-quality registry for the monitored
// municipalities and upserts the normalized analysis records into Postgres.
//
// Modes:
//
//	etl --html report.html [--reseau R --departement D --commune C]
//	    offline: one parse-map-upsert cycle from a saved report
//	etl --city-index 3
//	    online: process a single municipality by its position
//	etl [--limit N] [--sleep 800ms]
//	    online: process all active municipalities sequentially
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hydromet/orobnat-etl/internal/adapter/orobnat"
	"github.com/hydromet/orobnat-etl/internal/adapter/postgres"
	"github.com/hydromet/orobnat-etl/internal/config"
	"github.com/hydromet/orobnat-etl/internal/domain"
	"github.com/hydromet/orobnat-etl/internal/observability"
	"github.com/hydromet/orobnat-etl/internal/pipeline"
)

// maxFailureDetails bounds how many failures the terminal summary lists.
const maxFailureDetails = 10

type options struct {
	htmlPath    string
	reseau      string
	departement string
	commune     string
	cityIndex   int
	limit       int
	sleep       time.Duration
	envFile     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "etl: %v\n", err)
		if errors.Is(err, pipeline.ErrNoMunicipalities) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "etl",
		Short:         "Scrape OROBNAT water-quality reports into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.htmlPath, "html", "", "path to a local HTML report (offline mode)")
	cmd.Flags().StringVar(&opts.reseau, "reseau", "", "water-system code for offline mode")
	cmd.Flags().StringVar(&opts.departement, "departement", "", "département code for offline mode")
	cmd.Flags().StringVar(&opts.commune, "commune", "", "INSEE commune code for offline mode")
	cmd.Flags().IntVar(&opts.cityIndex, "city-index", -1, "process a single municipality by index")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "process only the first N active municipalities (0 = all)")
	cmd.Flags().DurationVar(&opts.sleep, "sleep", 0, "pause between municipalities (default from BATCH_SLEEP)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "load environment from this file")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		godotenv.Load() //nolint:errcheck // a missing .env is fine
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	client := orobnat.NewClient(cfg, logger)
	processor := pipeline.NewProcessor(
		func() (pipeline.Session, error) { return client.Open() },
		store,
		domain.SearchDefaults{
			RegionID: cfg.OrobnatRegionID,
			Usage:    cfg.OrobnatUsage,
			Position: cfg.OrobnatPosition,
		},
		logger,
		metrics,
	)

	if opts.htmlPath != "" {
		return runOffline(ctx, opts, processor, store)
	}

	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	if opts.cityIndex >= 0 {
		return runSingle(ctx, opts, processor, store)
	}

	sleep := cfg.BatchSleep
	if opts.sleep > 0 {
		sleep = opts.sleep
	}
	runner := pipeline.NewRunner(store, processor, logger, metrics, sleep, opts.limit)

	summary, err := runner.Run(ctx)
	if summary.Attempted > 0 {
		printSummary(summary)
	}
	return err
}

// runOffline ingests a saved report through one upsert cycle and reports what
// was written.
func runOffline(ctx context.Context, opts *options, processor *pipeline.Processor, store *postgres.Store) error {
	f, err := os.Open(opts.htmlPath)
	if err != nil {
		return fmt.Errorf("open html file: %w", err)
	}
	defer f.Close()

	stub := domain.SearchPayload{
		Methode:     "rechercher",
		Reseau:      opts.reseau,
		Departement: opts.departement,
		Commune:     opts.commune,
	}

	id, err := processor.ProcessHTML(ctx, f, stub)
	if err != nil {
		return err
	}
	fmt.Printf("[OK] upserted from %s: id=%s\n", opts.htmlPath, id)

	// Read back what landed, as a quick end-to-end check.
	exists, err := store.AnalysisExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("analysis %s not found after upsert", id)
	}
	rows, err := store.ResultRowsFor(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("stored result rows: %d\n", len(rows))
	return nil
}

// runSingle processes exactly one municipality; its error is fatal since
// there is no batch to continue.
func runSingle(ctx context.Context, opts *options, processor *pipeline.Processor, store *postgres.Store) error {
	cities, err := store.ActiveMunicipalities(ctx)
	if err != nil {
		return err
	}
	if len(cities) == 0 {
		return pipeline.ErrNoMunicipalities
	}

	idx := opts.cityIndex
	if idx > len(cities)-1 {
		idx = len(cities) - 1
	}

	id, err := processor.Process(ctx, cities[idx])
	if err != nil {
		return fmt.Errorf("process %s: %w", cities[idx].Label(), err)
	}
	fmt.Printf("[OK] upserted from OROBNAT: id=%s (city-index=%d)\n", id, idx)
	return nil
}

func printSummary(s pipeline.Summary) {
	fmt.Println("\n===== Summary =====")
	fmt.Printf("Total: %d | OK: %d | FAIL: %d\n", s.Attempted, s.Succeeded, s.Failed)
	if len(s.Failures) == 0 {
		return
	}
	fmt.Println("Failures:")
	for i, f := range s.Failures {
		if i == maxFailureDetails {
			fmt.Printf(" ... and %d more\n", len(s.Failures)-maxFailureDetails)
			break
		}
		fmt.Printf(" - %s: %s\n", f.Name, f.Err)
	}
}
