package ports

import "context"

// Example is one labeled training item: an input and its expected target.
// Neither field may be empty once loaded.
type Example struct {
	InputText string
	Target    string
}

// Instruction is the natural-language directive half of a Prompt.
type Instruction struct {
	Text string
}

// Demonstration is one input/output pair bundled alongside an Instruction
// to few-shot an LLM call.
type Demonstration struct {
	Input  string
	Output string
}

// Prompt is an Instruction plus an ordered sequence of Demonstrations —
// everything a Runner needs to drive one stage of the pipeline.
type Prompt struct {
	Instruction Instruction
	Examples    []Demonstration
}

// PromptSet maps every declared stage name to the Prompt currently assigned
// to it. A well-formed PromptSet has exactly one entry per declared stage.
type PromptSet map[string]Prompt

// Trial is one immutable record of a single optimization iteration: the
// stage mutated, the full candidate PromptSet evaluated, and the resulting
// score. Trial.Iteration is the trial's position in the History, except for
// the sentinel Best recorded before any real trial has run, which carries
// Iteration -1.
type Trial struct {
	Iteration int
	Stage     string
	Prompts   PromptSet
	Score     float64
}

// Attempt is one past (prompt, score) pair for a given stage, as surfaced to
// the Proposer via ProposerContext.PastAttempts.
type Attempt struct {
	Prompt Prompt
	Score  float64
}

// ProposerContext is everything the Proposer needs to draft a new
// Instruction for one stage, grounded in what has already been tried.
type ProposerContext struct {
	StageName      string
	DataSummary    string
	ProgramSummary string
	PastAttempts   []Attempt
	InitialPrompts PromptSet
}

// Options configures one optimization run. optimizer.Optimize uses the values
// as given: zero values are not replaced by defaults, so callers start from
// optimizer.DefaultOptions and override the fields they need.
type Options struct {
	MaxIterations      int
	BatchSize          int
	Seed               int64
	EarlyStopThreshold float64
}

// DataLoader returns the full training set. Invoked exactly once, at the
// start of a run.
type DataLoader interface {
	Load(ctx context.Context) ([]Example, error)
}

// Runner executes one pipeline stage for one example under a candidate
// PromptSet. Its return value is opaque to the optimizer; only the
// Evaluator interprets it.
type Runner interface {
	Run(ctx context.Context, item Example, prompts PromptSet) (any, error)
}

// Evaluator scores a batch of Runner outputs with a single finite real,
// higher meaning better. It must accept an empty batch.
type Evaluator interface {
	Evaluate(ctx context.Context, outputs []any) (float64, error)
}

// Proposer drafts a new Prompt for one stage given its ProposerContext. When
// PastAttempts is empty, a Proposer should return InitialPrompts[StageName]
// verbatim.
type Proposer interface {
	Propose(ctx context.Context, pc ProposerContext) (Prompt, error)
}

// Outputter receives the best PromptSet found once, at the end of a run.
type Outputter interface {
	Output(ctx context.Context, prompts PromptSet) error
}
