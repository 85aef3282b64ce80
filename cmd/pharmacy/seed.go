package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/seed"
)

func seedCmd() *cobra.Command {
	var (
		catalogPath string
		reindex     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and the starter catalog",
		Long: `Seed creates the admin account named by ADMIN_USERNAME when
ADMIN_PASSWORD is set, and loads the starter catalog into an empty product
table. The catalog comes from --catalog, SEED_CATALOG, or the built-in list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if catalogPath != "" {
				cfg.SeedCatalog = catalogPath
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("missing required env DATABASE_URL")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSeed(ctx, cfg, reindex)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file (overrides SEED_CATALOG)")
	cmd.Flags().BoolVar(&reindex, "reindex", false, "rebuild the Elasticsearch index from the database")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, reindex bool) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	s := &seed.Seeder{Repo: a.repo, Catalog: a.catalog}

	if cfg.AdminPassword != "" {
		if _, err := s.Admin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	} else {
		a.logger.Info("seed_admin_skipped", "reason", "ADMIN_PASSWORD not set")
	}

	items, err := seed.LoadCatalog(cfg.SeedCatalog)
	if err != nil {
		return err
	}
	if _, err := s.Products(ctx, items); err != nil {
		return err
	}

	if reindex {
		if a.elastic == nil {
			return fmt.Errorf("reindex requested but Elasticsearch is not available")
		}
		n, err := a.elastic.Reindex(ctx)
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		a.logger.Info("search_reindexed", "count", n)
	}
	return nil
}
