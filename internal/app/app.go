// Package app wires storage, providers and services from configuration.
// Both the HTTP server and the import command start from Build.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/mycurrency/internal/adapters/providers/currencybeacon"
	"github.com/SscSPs/mycurrency/internal/adapters/providers/mock"
	"github.com/SscSPs/mycurrency/internal/adapters/resilience"
	"github.com/SscSPs/mycurrency/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/mycurrency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/core/services"
	"github.com/SscSPs/mycurrency/internal/platform/config"
	"github.com/SscSPs/mycurrency/internal/platform/events"
	"github.com/SscSPs/mycurrency/internal/platform/metrics"
	"github.com/SscSPs/mycurrency/internal/repositories/database/badgerdb"
	"github.com/SscSPs/mycurrency/internal/repositories/database/pgsql"
	"github.com/SscSPs/mycurrency/pkg/database"
)

// App holds the wired services and everything that must be released on exit.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Services *portssvc.ServiceContainer

	closers []func() error
}

// NewLogger builds the JSON logger used by every binary.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// Build opens the configured store, seeds it when asked to, and assembles the
// provider registry, the resilient fetcher and the services on top of it.
// On error everything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	repos, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	publisher := events.NewFailoverPublisher(a.Config.KafkaBrokers, a.Config.KafkaFailoverTopic, a.Logger)
	a.closers = append(a.closers, publisher.Close)

	registry := services.NewProviderRegistryService(repos.ProviderRepo, publisher, a.Metrics)
	fetcher := resilience.New(
		resilience.PolicyFromConfig(a.Config.Resilience),
		registry,
		rateProviders(a.Config),
		resilience.WithMetrics(a.Metrics),
		resilience.WithLogger(a.Logger),
	)
	a.Services = services.NewServiceContainer(a.Config, repos, registry, fetcher, a.Metrics)

	if a.Config.SeedStaticData {
		if err := a.Services.StaticData.InitializeStaticData(ctx); err != nil {
			return fmt.Errorf("failed to seed static data: %w", err)
		}
		a.Logger.Info("Static data initialized.")
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (portsrepo.RepositoryProvider, error) {
	switch a.Config.StorageDriver {
	case config.StorageBadger:
		db, err := database.NewBadgerDB(a.Config.BadgerPath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		a.closers = append(a.closers, db.Close)
		a.Logger.Info("Badger store opened.", slog.Bool("in_memory", a.Config.BadgerPath == ""))
		return badgerdb.NewRepositoryProvider(db), nil

	default:
		if a.Config.RunMigrations {
			a.Logger.Info("Running database migrations...")
			if err := database.RunMigrations(a.Config.DatabaseURL, a.Config.MigrationsPath, a.Logger); err != nil {
				return portsrepo.RepositoryProvider{}, err
			}
		}
		pool, err := database.NewPgxPool(ctx, a.Config.DatabaseURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.Logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), nil
	}
}

// rateProviders lists every adapter the registry may select.
func rateProviders(cfg *config.Config) []providers.RateProvider {
	return []providers.RateProvider{
		currencybeacon.New(cfg.CurrencyBeacon),
		mock.New(cfg.MockProviderSeed),
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("Failed to release resources", slog.String("error", err.Error()))
		return err
	}
	return nil
}
