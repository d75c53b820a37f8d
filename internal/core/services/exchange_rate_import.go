package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/SscSPs/mycurrency/internal/utils/dates"
	"golang.org/x/sync/errgroup"
)

// ImportRange backfills the time series of every ordered pair among currencies
// between from and to, both inclusive. A source whose every target already has
// a rate for each day of the interval is skipped, so an interrupted run can be
// repeated safely.
func (s *ExchangeRateService) ImportRange(ctx context.Context, currencies []string, from, to time.Time) (*domain.ImportSummary, error) {
	from, to = dates.DateOnly(from), dates.DateOnly(to)
	if from.After(to) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("from date %s is after to date %s", dates.Format(from), dates.Format(to)))
	}
	if dates.IsFuture(to, s.now()) {
		return nil, apperrors.NewRateError(apperrors.ErrFutureDate, futureDateMessage)
	}

	codes := uniqueCodes(currencies)
	if len(codes) < 2 {
		return nil, apperrors.NewValidationError("at least two distinct currencies are required")
	}
	for _, code := range codes {
		if err := s.ensureKnown(ctx, "import", code); err != nil {
			return nil, err
		}
	}

	active, err := s.providerService.GetActiveProvider(ctx)
	if err != nil {
		return nil, err
	}

	days := len(dates.Range(from, to))
	summary := &domain.ImportSummary{From: from, To: to, Requested: len(codes), SkippedSources: []string{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.importConcurrency)
	for _, source := range codes {
		targets := otherCodes(codes, source)
		g.Go(func() error {
			covered, err := s.isCovered(gctx, source, targets, from, to, days)
			if err != nil {
				return err
			}
			if covered {
				s.LogDebug(gctx, "Interval already stored, skipping source", slog.String("source", source))
				mu.Lock()
				summary.SkippedSources = append(summary.SkippedSources, source)
				mu.Unlock()
				return nil
			}

			rates, err := s.fetcher.FetchSeries(gctx, active.Name, source, targets, from, to)
			if err != nil {
				return err
			}
			stored, err := s.rateRepo.SaveExchangeRates(gctx, rates)
			if err != nil {
				return fmt.Errorf("failed to store rates for %s: %w", source, err)
			}
			s.Metrics.RecordImported(stored)
			s.LogInfo(gctx, "Imported exchange rates",
				slog.String("source", source),
				slog.Int("fetched", len(rates)),
				slog.Int("stored", stored),
			)

			mu.Lock()
			summary.RatesFetched += len(rates)
			summary.RatesStored += stored
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Exchange rate import failed",
			slog.String("from", dates.Format(from)),
			slog.String("to", dates.Format(to)),
		)
		return nil, err
	}

	sort.Strings(summary.SkippedSources)
	return summary, nil
}

// isCovered reports whether every target already has one stored rate per day.
func (s *ExchangeRateService) isCovered(ctx context.Context, source string, targets []string, from, to time.Time, days int) (bool, error) {
	for _, target := range targets {
		n, err := s.rateRepo.CountExchangeRatesInRange(ctx, source, target, from, to)
		if err != nil {
			return false, fmt.Errorf("failed to check stored rates for %s/%s: %w", source, target, err)
		}
		if n < days {
			return false, nil
		}
	}
	return true, nil
}

func uniqueCodes(currencies []string) []string {
	seen := make(map[string]struct{}, len(currencies))
	out := make([]string, 0, len(currencies))
	for _, c := range currencies {
		c = normalizeCode(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func otherCodes(codes []string, exclude string) []string {
	out := make([]string, 0, len(codes)-1)
	for _, c := range codes {
		if c != exclude {
			out = append(out, c)
		}
	}
	return out
}
