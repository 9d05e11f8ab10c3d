package optimizer

import "github.com/longregen/promptune/internal/ports"

// sampler draws uniform-without-replacement batches from a read-only
// dataset, never mutating the caller's slice.
type sampler struct {
	rng rng
}

func newSampler(r rng) *sampler {
	return &sampler{rng: r}
}

// draw returns min(batchSize, len(dataset)) distinct items from dataset, in
// an order determined by the sampler's PRNG.
func (s *sampler) draw(dataset []ports.Example, batchSize int) []ports.Example {
	n := len(dataset)
	if batchSize > n {
		batchSize = n
	}
	if batchSize <= 0 {
		return []ports.Example{}
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	// Partial Fisher-Yates: only shuffle as many positions as we need to draw.
	for i := 0; i < batchSize; i++ {
		j := i + s.rng.intn(n-i)
		indices[i], indices[j] = indices[j], indices[i]
	}

	batch := make([]ports.Example, batchSize)
	for i := 0; i < batchSize; i++ {
		batch[i] = dataset[indices[i]]
	}
	return batch
}
