// Package evaluators implements ports.Evaluator against the
// llmopt.PipelineOutput values llmopt.PipelineRunner produces: ExactMatch
// for deterministic tasks, SemanticSimilarity for free-form text scored by
// embedding distance, and LLMJudge for criteria an embedding can't capture.
package evaluators
