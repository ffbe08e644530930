// probe fetches one price (or takes --price) and prints the barrier
// classification once. Handy for checking a barrier table before a session.
//
//	probe                     classify the live price
//	probe --price 4560        classify a given price
//	probe history --since 24h export journaled transitions as CSV
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/web3guy0/goldsniper/core"
	"github.com/web3guy0/goldsniper/feeds"
	"github.com/web3guy0/goldsniper/internal/config"
	"github.com/web3guy0/goldsniper/internal/dashboard"
	"github.com/web3guy0/goldsniper/storage"
	"github.com/web3guy0/goldsniper/strategy"
)

// fixedPrice serves --price as a source
type fixedPrice float64

func (p fixedPrice) Name() string { return "manual" }

func (p fixedPrice) FetchPrice(context.Context) (float64, error) { return float64(p), nil }

var rootCmd = &cobra.Command{
	Use:   "probe",
	Short: "Classify one gold price against the barrier table",
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := cmd.Flags().GetFloat64("price")
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		available, err := classify(cmd.Context(), cfg, price, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !available {
			os.Exit(1)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Export journaled status transitions as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := cmd.Flags().GetDuration("since")
		if err != nil {
			return err
		}
		outPath, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if !cfg.DatabaseEnabled() {
			return fmt.Errorf("journal disabled (DATABASE_PATH=%s)", cfg.DatabasePath)
		}

		journal, err := storage.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer journal.Close()

		events, err := journal.Since(time.Now().Add(-since))
		if err != nil {
			return fmt.Errorf("query journal: %w", err)
		}

		if outPath == "" {
			return gocsv.Marshal(&events, cmd.OutOrStdout())
		}
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := gocsv.MarshalFile(&events, f); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		log.Info().Int("events", len(events)).Str("file", outPath).Msg("📜 History exported")
		return nil
	},
}

// classify runs one engine tick and prints the centered frame
func classify(ctx context.Context, cfg *config.Config, price float64, out io.Writer) (bool, error) {
	var source feeds.PriceSource = fixedPrice(price)
	if price == 0 {
		var err error
		source, err = feeds.NewSource(cfg)
		if err != nil {
			return false, fmt.Errorf("create price feed: %w", err)
		}
		if lc, ok := source.(feeds.Lifecycle); ok {
			if err := lc.Start(); err != nil {
				return false, fmt.Errorf("feed start: %w", err)
			}
			defer lc.Stop()
			// Streams need a moment to deliver the first trade
			time.Sleep(3 * time.Second)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	engine := core.NewEngine(source, strategy.NewSniper(cfg.Barriers, cfg.PipTrigger), nil, cfg.PollInterval)
	report := engine.Tick(ctx)

	fmt.Fprint(out, dashboard.New(out, dashboard.LayoutCentered).Frame(report))
	return report.Available, nil
}

func main() {
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	rootCmd.Flags().Float64P("price", "p", 0, "classify this price instead of fetching one")
	historyCmd.Flags().Duration("since", 24*time.Hour, "how far back to export")
	historyCmd.Flags().StringP("out", "o", "", "CSV file to write (stdout when empty)")
	rootCmd.AddCommand(historyCmd)

	cobra.CheckErr(rootCmd.Execute())
}
