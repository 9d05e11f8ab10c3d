package optimizer

import "math"

// selector chooses which stage to mutate next. It guarantees every declared
// stage is tried at least once before surrogate-driven selection begins.
type selector struct {
	stages     []string
	surrogates map[string]*surrogate
	executed   map[string]bool
	rng        rng
}

func newSelector(stages []string, surrogates map[string]*surrogate, executed map[string]bool, r rng) *selector {
	return &selector{stages: stages, surrogates: surrogates, executed: executed, rng: r}
}

// pick returns the next stage to mutate. lastScore is the most recently
// recorded trial's score, or 0 if no trial has run yet.
func (sel *selector) pick(lastScore float64) string {
	unexecuted := make([]string, 0, len(sel.stages))
	for _, s := range sel.stages {
		if !sel.executed[s] {
			unexecuted = append(unexecuted, s)
		}
	}
	if len(unexecuted) > 0 {
		return unexecuted[sel.rng.intn(len(unexecuted))]
	}

	utilities := make([]float64, len(sel.stages))
	var total float64
	for i, s := range sel.stages {
		u := sel.surrogates[s].utility(lastScore, sel.rng)
		utilities[i] = u
		total += u
	}

	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return sel.stages[sel.rng.intn(len(sel.stages))]
	}

	threshold := sel.rng.float64() * total
	var cumulative float64
	for i, u := range utilities {
		cumulative += u
		if threshold < cumulative {
			return sel.stages[i]
		}
	}
	// Floating point rounding can leave threshold == cumulative at the last
	// entry; fall back to it rather than returning a zero-value stage name.
	return sel.stages[len(sel.stages)-1]
}
