// Command rates_import backfills stored exchange rates for every pair among a
// set of currencies over an inclusive date range.
//
//	rates_import --currencies EUR,USD,CHF --from 2024-01-01 --to 2024-01-31
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/mycurrency/internal/app"
	"github.com/SscSPs/mycurrency/internal/platform/config"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"github.com/spf13/pflag"
)

type options struct {
	currencies []string
	from       time.Time
	to         time.Time
}

func parseOptions(args []string, now time.Time) (*options, error) {
	fs := pflag.NewFlagSet("rates_import", pflag.ContinueOnError)
	currencies := fs.StringSlice("currencies", nil, "comma separated currency codes, at least two")
	from := fs.String("from", "", "first valuation date (YYYY-MM-DD)")
	to := fs.String("to", dates.Format(now), "last valuation date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if len(*currencies) < 2 {
		return nil, fmt.Errorf("--currencies needs at least two codes")
	}
	if *from == "" {
		return nil, fmt.Errorf("--from is required")
	}
	fromDate, err := dates.Parse(*from)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	toDate, err := dates.Parse(*to)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}
	return &options{currencies: *currencies, from: fromDate, to: toDate}, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:], time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	bootLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, opts); err != nil {
		logger.Error("Import failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts *options) error {
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.Services.ExchangeRate.ImportRange(ctx, opts.currencies, opts.from, opts.to)
	if err != nil {
		return err
	}
	logger.Info("Import finished",
		slog.String("from", dates.Format(summary.From)),
		slog.String("to", dates.Format(summary.To)),
		slog.Int("currencies", summary.Requested),
		slog.Any("skipped_sources", summary.SkippedSources),
		slog.Int("rates_fetched", summary.RatesFetched),
		slog.Int("rates_stored", summary.RatesStored),
	)
	return nil
}
