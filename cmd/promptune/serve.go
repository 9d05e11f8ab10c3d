package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpserver "github.com/longregen/promptune/internal/adapters/http"
	"github.com/longregen/promptune/internal/adapters/postgres"
	"github.com/longregen/promptune/internal/adapters/progress"
	"github.com/longregen/promptune/internal/adapters/tracing"
)

// serveCmd runs the read-side HTTP API: listing runs, inspecting trial
// history, and streaming live progress over a WebSocket upgrade.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and progress WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			shutdownTracer, err := tracing.InitTracer("promptune")
			if err != nil {
				return fmt.Errorf("failed to init tracing: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracer(shutdownCtx)
			}()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			runsRepo := postgres.NewOptimizationRepository(pool)
			broadcaster := progress.NewWebSocketBroadcaster()

			server := httpserver.NewServer(cfg, runsRepo, broadcaster)

			errCh := make(chan error, 1)
			go func() {
				fmt.Printf("promptune serving on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
				errCh <- server.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			case <-sigCh:
				fmt.Println("shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(shutdownCtx); err != nil {
					return fmt.Errorf("graceful shutdown failed: %w", err)
				}
			}

			return nil
		},
	}

	return cmd
}
