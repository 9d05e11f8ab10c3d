package optimizer

import "fmt"

// ConfigurationError reports a malformed run request, caught at INIT before
// any collaborator is called: an empty stage set, an initial PromptSet
// missing a declared stage, a batch size below 1, or a negative iteration
// budget.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("optimizer: configuration error: %s", e.Message)
}

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps a failure raised by an injected DataLoader,
// Runner, Evaluator, Proposer, or Outputter. It is surfaced to the caller of
// Optimize unchanged in substance; the optimizer never retries and never
// commits a partial Trial after one occurs.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("optimizer: %s failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func newCollaboratorError(collaborator string, err error) *CollaboratorError {
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}

// NumericError is never returned to the caller — it documents, in code, the
// invariant that a non-finite Evaluator score is recorded in History as-is
// but must never replace Best. Comparisons against NaN are always false in
// Go, so this falls out of plain float64 comparison; the type exists so the
// invariant has a name instead of living only in a comment.
type NumericError struct {
	Score float64
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("optimizer: non-finite evaluator score %v recorded but ignored for Best", e.Score)
}
