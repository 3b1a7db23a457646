package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/valutatrade/tradehub/internal/adapters/database/pgsql"
	"github.com/valutatrade/tradehub/internal/adapters/sources"
	"github.com/valutatrade/tradehub/internal/adapters/storage/jsonfile"
	"github.com/valutatrade/tradehub/internal/cli"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
	"github.com/valutatrade/tradehub/internal/core/services"
	"github.com/valutatrade/tradehub/internal/platform/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	repos, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	rateSources := sources.Build(cfg)

	container, err := services.NewContainer(ctx, cfg, repos, rateSources, logger)
	if err != nil {
		logger.Error("Failed to initialize services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.RefreshInterval > 0 {
		go refreshLoop(ctx, container, cfg.RefreshInterval, logger)
	}

	runner := cli.NewRunner(container, cfg.BaseCurrency, os.Stdin, os.Stdout, logger)
	if err := runner.Run(ctx); err != nil {
		logger.Error("CLI loop failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories selects the persistence backend. Rate artifacts always
// live in JSON files because their wire format is fixed; the Postgres
// backend replaces only the entity storage.
func buildRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portsrepo.RepositoryProvider, func(), error) {
	ratesStore := jsonfile.NewRatesStore(cfg.SnapshotFile, cfg.HistoryFile)

	if cfg.StorageBackend == config.BackendPostgres {
		if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pgsql.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connection pool established.")
		return &portsrepo.RepositoryProvider{
			UserRepo:      pgsql.NewUserRepository(pool),
			PortfolioRepo: pgsql.NewPortfolioRepository(pool),
			RatesRepo:     ratesStore,
		}, pool.Close, nil
	}

	store := jsonfile.NewStore(cfg.UsersFile, cfg.PortfoliosFile)
	return &portsrepo.RepositoryProvider{
		UserRepo:      store,
		PortfolioRepo: store,
		RatesRepo:     ratesStore,
	}, func() {}, nil
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	logger.Info("Database migrations applied.")
	return nil
}

// refreshLoop periodically refreshes all sources. Failures are already
// logged per cycle; the loop itself never stops.
func refreshLoop(ctx context.Context, container *services.Container, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := container.Rates.Refresh(ctx, ""); err != nil {
				logger.Warn("scheduled rates refresh reported an error", slog.String("error", err.Error()))
			}
		}
	}
}
