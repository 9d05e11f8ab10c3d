package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/longregen/promptune/internal/config"
	"github.com/longregen/promptune/internal/llm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "promptune",
		Short: "promptune - TPE-style prompt optimizer for multi-stage LLM pipelines",
		Long: `promptune searches for the instructions and demonstrations that make a
multi-stage LLM pipeline score best against a dataset, using a tree-structured
Parzen estimator over a history of past trials.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			llmClient = llm.NewClient(
				cfg.LLM.URL,
				cfg.LLM.APIKey,
				cfg.LLM.Model,
				cfg.LLM.MaxTokens,
				cfg.LLM.Temperature,
			)

			return nil
		},
	}

	rootCmd.AddCommand(
		optimizeCmd(),
		serveCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configCmd shows the current configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("LLM:")
			fmt.Printf("  URL:         %s\n", cfg.LLM.URL)
			fmt.Printf("  Model:       %s\n", cfg.LLM.Model)
			fmt.Printf("  Max Tokens:  %d\n", cfg.LLM.MaxTokens)
			fmt.Printf("  Temperature: %.2f\n", cfg.LLM.Temperature)
			fmt.Printf("  API Key:     %s\n", maskSecret(cfg.LLM.APIKey))
			fmt.Println()

			fmt.Println("Embedding:")
			fmt.Printf("  URL:        %s\n", cfg.Embedding.URL)
			fmt.Printf("  Model:      %s\n", cfg.Embedding.Model)
			fmt.Printf("  Dimensions: %d\n", cfg.Embedding.Dimensions)
			fmt.Printf("  API Key:    %s\n", maskSecret(cfg.Embedding.APIKey))
			fmt.Printf("  Status:     %s\n", boolStatus(cfg.IsEmbeddingConfigured()))
			fmt.Println()

			fmt.Println("Database:")
			fmt.Printf("  Local path: %s\n", cfg.Database.Path)
			fmt.Printf("  PostgreSQL: %s\n", maskSecret(cfg.Database.PostgresURL))
			fmt.Println()

			fmt.Println("Server:")
			fmt.Printf("  Host:         %s\n", cfg.Server.Host)
			fmt.Printf("  Port:         %d\n", cfg.Server.Port)
			fmt.Printf("  CORS origins: %v\n", cfg.Server.CORSOrigins)
			fmt.Println()

			fmt.Println("Optimizer defaults:")
			fmt.Printf("  Max iterations:       %d\n", cfg.Optimizer.MaxIterations)
			fmt.Printf("  Batch size:           %d\n", cfg.Optimizer.BatchSize)
			fmt.Printf("  Early stop threshold: %.2f\n", cfg.Optimizer.EarlyStopThreshold)
			fmt.Println()

			fmt.Println("Environment variables:")
			fmt.Println("  PROMPTUNE_LLM_URL, PROMPTUNE_LLM_API_KEY, PROMPTUNE_LLM_MODEL")
			fmt.Println("  PROMPTUNE_EMBEDDING_URL, PROMPTUNE_EMBEDDING_API_KEY, PROMPTUNE_EMBEDDING_MODEL")
			fmt.Println("  PROMPTUNE_DB_PATH, PROMPTUNE_POSTGRES_URL")
			fmt.Println("  PROMPTUNE_SERVER_HOST, PROMPTUNE_SERVER_PORT, PROMPTUNE_CORS_ORIGINS")
			fmt.Println("  PROMPTUNE_MAX_ITERATIONS, PROMPTUNE_BATCH_SIZE, PROMPTUNE_EARLY_STOP_THRESHOLD")

			return nil
		},
	}
}

// versionCmd shows version information.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("promptune %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)
		},
	}
}
