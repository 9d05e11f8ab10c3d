package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/promptune/internal/config"
	"github.com/longregen/promptune/internal/llm"
)

// Version information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Shared global variables, populated by the root command's PersistentPreRunE.
var (
	cfg       *config.Config
	llmClient *llm.Client
)

// initDB opens a connection pool for CLI commands that need run persistence.
func initDB(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.Database.PostgresURL == "" {
		return nil, fmt.Errorf("PostgreSQL connection required; set PROMPTUNE_POSTGRES_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}

// maskSecret masks a secret string for display.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// boolStatus returns a status string for a boolean.
func boolStatus(b bool) string {
	if b {
		return "configured"
	}
	return "not configured"
}
