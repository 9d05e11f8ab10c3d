// Package optimizer implements the sequential, stage-aware prompt-set
// search described in the project's specification: a credit-assignment
// loop that picks which stage of a multi-stage LLM pipeline to mutate next,
// asks an external Proposer to draft a new instruction for it, evaluates
// the resulting candidate PromptSet on a sampled batch, and updates a
// per-stage Tree-Parzen-Estimator-style surrogate that drives the next
// selection.
//
// The package has five collaborator boundaries — DataLoader, Runner,
// Evaluator, Proposer, Outputter, all declared in internal/ports — and
// calls into exactly one of them at a time. Trials never run concurrently:
// each iteration's stage choice depends on the previous iteration's score,
// so the optimizer is intentionally single-threaded and cooperative. All
// randomness, in both stage selection and batch sampling, is drawn from one
// seeded PRNG so that a fixed seed and deterministic collaborators produce a
// byte-identical trial history across runs.
package optimizer
