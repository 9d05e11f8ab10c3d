// Package llmopt adapts an ports.LLMService to the optimizer's Proposer and
// Runner collaborators, and to dspy-go's signature format for describing
// the shape of each LLM call.
//
// ClientAdapter wraps ports.LLMService as dspy-go's core.LLM, so any
// dspy-go tooling built against core.LLM (signatures, modules) can drive
// the same backend the rest of the pipeline uses.
//
// LLMProposer drafts an improved stage instruction from past trial scores.
// PipelineRunner executes every declared stage of a candidate PromptSet,
// threading one stage's output into the next stage's input.
package llmopt
