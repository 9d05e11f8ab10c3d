package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/longregen/promptune/internal/adapters/embedding"
	"github.com/longregen/promptune/internal/adapters/evaluators"
	"github.com/longregen/promptune/internal/adapters/id"
	"github.com/longregen/promptune/internal/adapters/llmopt"
	"github.com/longregen/promptune/internal/adapters/loaders"
	"github.com/longregen/promptune/internal/adapters/outputs"
	"github.com/longregen/promptune/internal/adapters/postgres"
	"github.com/longregen/promptune/internal/application/services"
	"github.com/longregen/promptune/internal/application/usecases"
	"github.com/longregen/promptune/internal/llm"
	"github.com/longregen/promptune/internal/optimizer"
	"github.com/longregen/promptune/internal/ports"
)

// optimizeCmd provides subcommands for optimization run management.
func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Manage prompt optimization runs",
		Long: `Search for the instructions and demonstrations that make a multi-stage
LLM pipeline score best against a dataset.

Subcommands:
  run    Start a new optimization run
  list   List optimization runs
  show   Show details of a specific run
  best   Show the best trial recorded for a run`,
	}

	cmd.AddCommand(
		optimizeRunCmd(),
		optimizeListCmd(),
		optimizeShowCmd(),
		optimizeBestCmd(),
	)

	return cmd
}

// looksLikeFilePath treats anything with a path separator or a .jsonl
// extension as a file-backed dataset; anything else names a dataset row in
// training_examples.
func looksLikeFilePath(dataset string) bool {
	return strings.Contains(dataset, "/") || strings.HasSuffix(dataset, ".jsonl")
}

// buildCollaborators wires the optimizer.Dependencies a run needs from CLI
// flags: a DataLoader (JSONL file or Postgres dataset), an LLM-backed Runner
// and Proposer, the chosen Evaluator, and an Outputter (JSON file or
// Postgres). It is the usecases.CollaboratorFactory passed to
// usecases.RunOptimization.
func buildCollaborators(pool *pgxpool.Pool, dataset, evaluatorName, outputPath string) usecases.CollaboratorFactory {
	return func(runID, _ string, stages []string) (optimizer.Dependencies, error) {
		llmService := llm.NewService(llmClient)

		var dataLoader ports.DataLoader
		if looksLikeFilePath(dataset) {
			dataLoader = loaders.NewJSONLLoader(dataset)
		} else {
			exampleRepo := postgres.NewTrainingExampleRepository(pool, id.New())
			dataLoader = loaders.NewPostgresLoader(exampleRepo, dataset)
		}

		var evaluator ports.Evaluator
		switch evaluatorName {
		case "semantic":
			if !cfg.IsEmbeddingConfigured() {
				return optimizer.Dependencies{}, fmt.Errorf("semantic evaluator requires embedding configuration")
			}
			embedClient := embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions)
			cached := postgres.NewEmbeddingCacheRepository(pool, embedClient)
			evaluator = evaluators.NewSemanticSimilarity(cached)
		case "judge":
			evaluator = evaluators.NewLLMJudge(llmService, "Does the output correctly and completely answer the input?")
		case "exact", "":
			evaluator = evaluators.ExactMatch{}
		default:
			return optimizer.Dependencies{}, fmt.Errorf("unknown evaluator %q (want exact, semantic, or judge)", evaluatorName)
		}

		var outputter ports.Outputter
		if outputPath != "" {
			outputter = outputs.NewJSONFileOutputter(outputPath)
		} else {
			outputter = outputs.NewPostgresOutputter(postgres.NewOptimizationRepository(pool), runID)
		}

		return optimizer.Dependencies{
			DataLoader: dataLoader,
			Runner:     llmopt.NewPipelineRunner(llmService, stages),
			Evaluator:  evaluator,
			Proposer:   llmopt.NewLLMProposer(llmService),
			Outputter:  outputter,
		}, nil
	}
}

func optimizeRunCmd() *cobra.Command {
	var (
		name          string
		dataset       string
		stagesFlag    string
		initialFlag   string
		maxIterations int
		batchSize     int
		earlyStop     float64
		evaluatorName string
		outputPath    string
		wait          bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a new optimization run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("name is required (use --name)")
			}
			if dataset == "" {
				return fmt.Errorf("dataset is required (use --dataset)")
			}
			if stagesFlag == "" {
				return fmt.Errorf("at least one stage is required (use --stages)")
			}

			stages := strings.Split(stagesFlag, ",")
			for i := range stages {
				stages[i] = strings.TrimSpace(stages[i])
			}

			initialPrompts := map[string]any{}
			if initialFlag != "" {
				if err := json.Unmarshal([]byte(initialFlag), &initialPrompts); err != nil {
					return fmt.Errorf("failed to parse --initial-prompts as JSON: %w", err)
				}
			}
			for _, stage := range stages {
				if _, ok := initialPrompts[stage]; !ok {
					initialPrompts[stage] = stage
				}
			}

			ctx := context.Background()
			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			runsRepo := postgres.NewOptimizationRepository(pool)
			idGen := id.New()
			publisher := services.NewRunProgressPublisher(nil)
			build := buildCollaborators(pool, dataset, evaluatorName, outputPath)
			uc := usecases.NewRunOptimization(runsRepo, idGen, publisher, build)

			output, err := uc.Execute(ctx, &ports.RunOptimizationInput{
				Name:               name,
				Dataset:            dataset,
				Stages:             stages,
				InitialPrompts:     initialPrompts,
				MaxIterations:      maxIterations,
				BatchSize:          batchSize,
				EarlyStopThreshold: earlyStop,
			})
			if err != nil {
				return fmt.Errorf("failed to start optimization run: %w", err)
			}

			fmt.Printf("Started optimization run %s\n", output.RunID)

			if !wait {
				return nil
			}

			for event := range output.ProgressChannel {
				switch event.Type {
				case "improved":
					fmt.Printf("[%s] iteration %d/%d stage=%s score=%.4f (new best)\n",
						event.RunID, event.Iteration, event.MaxIterations, event.Stage, event.Score)
				case "completed":
					fmt.Printf("[%s] completed: best score %.4f on stage %s\n", event.RunID, event.BestScore, event.BestStage)
				case "failed":
					fmt.Printf("[%s] failed: %s\n", event.RunID, event.Message)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the optimization run (required)")
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "Dataset: a .jsonl file path or a Postgres dataset name (required)")
	cmd.Flags().StringVar(&stagesFlag, "stages", "", "Comma-separated pipeline stage names (required)")
	cmd.Flags().StringVar(&initialFlag, "initial-prompts", "", "JSON object of stage -> initial instruction text")
	cmd.Flags().IntVarP(&maxIterations, "iterations", "i", 0, "Maximum iterations (0 uses the optimizer default)")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 0, "Dataset examples sampled and scored per iteration (0 uses the optimizer default)")
	cmd.Flags().Float64Var(&earlyStop, "early-stop", 0, "Early-stop score threshold (0 uses the optimizer default)")
	cmd.Flags().StringVar(&evaluatorName, "evaluator", "exact", "Evaluator: exact, semantic, or judge")
	cmd.Flags().StringVar(&outputPath, "output", "", "Write final prompts to this JSON file instead of Postgres")
	cmd.Flags().BoolVarP(&wait, "wait", "w", true, "Stream progress until the run finishes")

	return cmd
}

func optimizeListCmd() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List optimization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := postgres.NewOptimizationRepository(pool)
			runs, err := repo.ListRuns(ctx, ports.ListOptimizationRunsOptions{Status: status, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if len(runs) == 0 {
				fmt.Println("No optimization runs found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tITERATIONS\tBEST SCORE\tSTARTED\tCOMPLETED")
			for _, run := range runs {
				completedStr := "N/A"
				if run.CompletedAt != nil {
					completedStr = run.CompletedAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%.4f\t%s\t%s\n",
					run.ID, run.Name, run.Status, run.Iterations, run.MaxIterations,
					run.BestScore, run.StartedAt.Format("2006-01-02 15:04"), completedStr)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (running, completed, failed)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to list")

	return cmd
}

func optimizeShowCmd() *cobra.Command {
	var showJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show optimization run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			runID := args[0]

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := postgres.NewOptimizationRepository(pool)
			run, err := repo.GetRun(ctx, runID)
			if err != nil {
				return fmt.Errorf("failed to get run: %w", err)
			}

			if showJSON {
				data, err := json.MarshalIndent(run, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Optimization Run: %s\n", run.ID)
			fmt.Printf("Name:        %s\n", run.Name)
			fmt.Printf("Status:      %s\n", run.Status)
			fmt.Printf("Stages:      %s\n", strings.Join(run.Stages, ", "))
			fmt.Printf("Iterations:  %d / %d\n", run.Iterations, run.MaxIterations)
			fmt.Printf("Best Score:  %.4f (stage %s)\n", run.BestScore, run.BestStage)
			fmt.Printf("Started:     %s\n", run.StartedAt.Format(time.RFC3339))
			if run.CompletedAt != nil {
				fmt.Printf("Completed:   %s\n", run.CompletedAt.Format(time.RFC3339))
			}

			trials, err := repo.GetTrials(ctx, runID)
			if err == nil && len(trials) > 0 {
				fmt.Printf("\nTrials recorded: %d\n", len(trials))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")

	return cmd
}

func optimizeBestCmd() *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "best <run-id>",
		Short: "Show the best trial recorded for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			runID := args[0]

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := postgres.NewOptimizationRepository(pool)
			trial, err := repo.GetBestTrial(ctx, runID)
			if err != nil {
				return fmt.Errorf("failed to get best trial: %w", err)
			}

			fmt.Printf("Best Trial: %s\n", trial.ID)
			fmt.Printf("Iteration:  %d\n", trial.Iteration)
			fmt.Printf("Stage:      %s\n", trial.Stage)
			fmt.Printf("Score:      %.4f\n", trial.Score)
			fmt.Printf("Recorded:   %s\n", trial.CreatedAt.Format(time.RFC3339))

			if showText {
				fmt.Println()
				fmt.Println("Instruction:")
				fmt.Println("---")
				fmt.Println(trial.Instruction)
				fmt.Println("---")
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&showText, "text", "t", false, "Show the full instruction text")

	return cmd
}
