package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"freshmart/internal/config"
	"freshmart/internal/database"
	"freshmart/internal/repository"
	"freshmart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fixturesPath := flag.String("fixtures", "data/fixtures.yaml", "YAML fixtures to load")
	feedsOnly := flag.Bool("feeds-only", false, "only write sample catalog feeds, do not touch the database")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	file, err := os.Open(*fixturesPath)
	if err != nil {
		return fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer file.Close()

	f, err := loadFixtures(file)
	if err != nil {
		return err
	}

	feeds, err := writeSampleFeeds(cfg.Import.BaseDir, f)
	if err != nil {
		return err
	}
	logger.Info().Str("dir", cfg.Import.BaseDir).Strs("feeds", feeds).Msg("sample catalog feeds written")

	if *feedsOnly {
		return nil
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	txr := repository.NewTransactor(pool, logger)
	s := &seeder{
		accounts: service.NewAccountService(repository.NewAccountRepository(pool, logger), nil, nil, logger),
		catalog: service.NewCatalogService(
			repository.NewProductRepository(pool, logger),
			repository.NewCategoryRepository(pool, logger),
			txr,
			logger,
		),
		agents: service.NewAgentService(repository.NewAgentRepository(pool, logger), logger),
		logger: logger,
	}

	sum, err := s.apply(ctx, f)
	if err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	logger.Info().
		Int("vendors", sum.Vendors).
		Int("customers", sum.Customers).
		Int("categories", sum.Categories).
		Int("products", sum.Products).
		Int("agents", sum.Agents).
		Int("skipped", sum.Skipped).
		Msg("seed completed")

	return nil
}
