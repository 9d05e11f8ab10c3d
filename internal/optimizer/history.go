package optimizer

import "github.com/longregen/promptune/internal/ports"

// history is the append-only ledger of every Trial run during one
// optimization. Nothing is ever deleted or mutated in place.
type history struct {
	trials []ports.Trial
}

func newHistory() *history {
	return &history{}
}

// append records a new Trial. Callers must set Trial.Iteration to the
// trial's position in the ledger before calling append.
func (h *history) append(t ports.Trial) {
	h.trials = append(h.trials, t)
}

// len reports how many trials have been recorded so far.
func (h *history) len() int {
	return len(h.trials)
}

// attemptsFor returns, oldest first, the (prompt, score) pairs for every
// past trial in which stage was the mutated stage.
func (h *history) attemptsFor(stage string) []ports.Attempt {
	attempts := make([]ports.Attempt, 0)
	for _, t := range h.trials {
		if t.Stage != stage {
			continue
		}
		prompt, ok := t.Prompts[stage]
		if !ok {
			continue
		}
		attempts = append(attempts, ports.Attempt{Prompt: prompt, Score: t.Score})
	}
	return attempts
}

// last returns the most recently appended trial, and false if History is
// empty.
func (h *history) last() (ports.Trial, bool) {
	if len(h.trials) == 0 {
		return ports.Trial{}, false
	}
	return h.trials[len(h.trials)-1], true
}
