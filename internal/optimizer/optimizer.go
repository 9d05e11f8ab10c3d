package optimizer

import (
	"context"
	"math"
	"time"

	"github.com/longregen/promptune/internal/ports"
)

// Dependencies bundles the five external collaborators an Optimize call
// needs. Every field is required except OnImproved.
type Dependencies struct {
	DataLoader ports.DataLoader
	Runner     ports.Runner
	Evaluator  ports.Evaluator
	Proposer   ports.Proposer
	Outputter  ports.Outputter

	// OnImproved, if set, is invoked synchronously every time Best is
	// replaced by a strictly better Trial. It is an ambient progress hook,
	// not part of the core's contract — a nil value is always safe.
	OnImproved func(ports.Trial)
}

// DefaultOptions returns the documented defaults from the options contract.
// Callers construct from this and override only the fields they care about,
// so an explicitly-set MaxIterations: 0 is never confused with "unset".
func DefaultOptions() ports.Options {
	return ports.Options{
		MaxIterations:      100,
		BatchSize:          8,
		Seed:               time.Now().UnixNano(),
		EarlyStopThreshold: 0.95,
	}
}

// Optimize runs one sequential search for the best PromptSet over the
// declared stages, calling back into deps at every suspension point. It
// returns a ConfigurationError before any collaborator is invoked if the
// request is malformed, or a CollaboratorError the first time any
// collaborator fails.
func Optimize(ctx context.Context, stages []string, initial map[string]any, deps Dependencies, opts ports.Options) (ports.PromptSet, error) {
	if len(stages) == 0 {
		return nil, newConfigurationError("stages must not be empty")
	}
	if opts.BatchSize < 1 {
		return nil, newConfigurationError("batch_size must be >= 1, got %d", opts.BatchSize)
	}
	if opts.MaxIterations < 0 {
		return nil, newConfigurationError("max_iterations must be >= 0, got %d", opts.MaxIterations)
	}

	initialPrompts, err := normalizeInitialPrompts(stages, initial)
	if err != nil {
		return nil, err
	}

	r := newMulberry32(opts.Seed)

	dataset, err := deps.DataLoader.Load(ctx)
	if err != nil {
		return nil, newCollaboratorError("dataloader", err)
	}

	surrogates := make(map[string]*surrogate, len(stages))
	for _, s := range stages {
		surrogates[s] = newSurrogate()
	}

	hist := newHistory()
	executed := make(map[string]bool, len(stages))
	sel := newSelector(stages, surrogates, executed, r)
	samp := newSampler(r)
	asm := newAssembler(deps.Proposer, stages, dataset, initialPrompts, hist)

	best := ports.Trial{
		Iteration: -1,
		Prompts:   initialPrompts,
		Score:     math.Inf(-1),
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lastScore := 0.0
		if last, ok := hist.last(); ok {
			lastScore = last.Score
		}

		stage := sel.pick(lastScore)
		executed[stage] = true

		candidate, err := asm.assemble(ctx, stage, best.Prompts)
		if err != nil {
			return nil, err
		}

		batch := samp.draw(dataset, opts.BatchSize)
		outputs := make([]any, 0, len(batch))
		for _, item := range batch {
			out, err := deps.Runner.Run(ctx, item, candidate)
			if err != nil {
				return nil, newCollaboratorError("runner", err)
			}
			outputs = append(outputs, out)
		}

		score, err := deps.Evaluator.Evaluate(ctx, outputs)
		if err != nil {
			return nil, newCollaboratorError("evaluator", err)
		}

		trial := ports.Trial{Iteration: iter, Stage: stage, Prompts: candidate, Score: score}
		hist.append(trial)
		surrogates[stage].update(score)

		// score > best.Score is false whenever score is NaN, so a
		// non-finite Evaluator result is recorded above but never promoted
		// to Best — see NumericError.
		if score > best.Score {
			best = trial
			if deps.OnImproved != nil {
				deps.OnImproved(trial)
			}
			if score >= opts.EarlyStopThreshold {
				break
			}
		}
	}

	if err := deps.Outputter.Output(ctx, best.Prompts); err != nil {
		return nil, newCollaboratorError("outputter", err)
	}

	return best.Prompts, nil
}

// normalizeInitialPrompts builds a PromptSet with exactly one entry per
// declared stage. A raw value of type string is wrapped as an Instruction
// with no Demonstrations; a raw value of type ports.Prompt is used as-is.
func normalizeInitialPrompts(stages []string, raw map[string]any) (ports.PromptSet, error) {
	out := make(ports.PromptSet, len(stages))
	for _, stage := range stages {
		v, ok := raw[stage]
		if !ok {
			return nil, newConfigurationError("initial_prompts missing declared stage %q", stage)
		}
		switch p := v.(type) {
		case string:
			out[stage] = ports.Prompt{Instruction: ports.Instruction{Text: p}, Examples: nil}
		case ports.Prompt:
			out[stage] = p
		default:
			return nil, newConfigurationError("initial_prompts[%q] must be a string or ports.Prompt, got %T", stage, v)
		}
	}
	return out, nil
}
