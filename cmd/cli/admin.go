package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sharespace-media/backend/internal/config"
	"github.com/sharespace-media/backend/internal/database"
	"github.com/sharespace-media/backend/internal/logger"
	"github.com/sharespace-media/backend/internal/models"
	"github.com/sharespace-media/backend/internal/sharelink"
	"github.com/spf13/cobra"
)

// Operator commands. These talk to the database directly instead of the
// API, so they need database credentials in the environment, not a token.

var linksSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired one-time links",
	Long: `Delete unconsumed links older than the configured TTL.

The server sweeps on its own schedule; this runs the same purge on demand.
With --older-than the cutoff is explicit and the configured TTL is ignored.

Examples:
  sharespace links sweep
  sharespace links sweep --older-than 48h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		return sweepLinks(olderThan)
	},
}

var linksStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show outstanding one-time link counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return linkStats()
	},
}

func init() {
	linksCmd.AddCommand(linksSweepCmd)
	linksCmd.AddCommand(linksStatsCmd)

	linksSweepCmd.Flags().Duration("older-than", 0, "Delete links older than this, regardless of the configured TTL")
}

func connectDatabase() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := database.Initialize(cfg.DSN(), !cfg.IsProduction()); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, nil
}

func sweepLinks(olderThan time.Duration) error {
	cfg, err := connectDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	ttl := cfg.ShareLinkTTL
	if olderThan > 0 {
		ttl = olderThan
	}
	if ttl <= 0 {
		return fmt.Errorf("no cutoff: SHARE_LINK_TTL is unset, pass --older-than")
	}

	store := sharelink.NewGormStore(database.DB)
	removed, err := store.DeleteOlderThan(context.Background(), time.Now().UTC().Add(-ttl))
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Removed %d expired link(s) older than %s\n", removed, ttl)
	return nil
}

func linkStats() error {
	cfg, err := connectDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	var total int64
	if err := database.DB.Model(&models.ShareToken{}).Count(&total).Error; err != nil {
		return fmt.Errorf("failed to count links: %w", err)
	}

	fmt.Printf("Outstanding links: %d\n", total)
	if total == 0 {
		return nil
	}

	var oldest models.ShareToken
	if err := database.DB.Order("created_at ASC").First(&oldest).Error; err != nil {
		return fmt.Errorf("failed to read oldest link: %w", err)
	}
	age := time.Since(oldest.CreatedAt).Round(time.Second)
	fmt.Printf("Oldest link:       %s old (created %s)\n", age, oldest.CreatedAt.Format(time.RFC3339))

	if cfg.ShareLinkTTL > 0 {
		var expired int64
		cutoff := time.Now().UTC().Add(-cfg.ShareLinkTTL)
		if err := database.DB.Model(&models.ShareToken{}).Where("created_at < ?", cutoff).Count(&expired).Error; err != nil {
			return fmt.Errorf("failed to count expired links: %w", err)
		}
		fmt.Printf("Expired (sweepable): %d\n", expired)
	} else {
		fmt.Println("TTL is disabled; links live until consumed.")
	}
	return nil
}
