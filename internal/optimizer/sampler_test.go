package optimizer

import (
	"testing"

	"github.com/longregen/promptune/internal/ports"
	"github.com/stretchr/testify/assert"
)

func examples(n int) []ports.Example {
	out := make([]ports.Example, n)
	for i := range out {
		out[i] = ports.Example{InputText: string(rune('a' + i)), Target: string(rune('A' + i))}
	}
	return out
}

func TestSamplerDrawNoDuplicates(t *testing.T) {
	s := newSampler(newMulberry32(1))
	batch := s.draw(examples(10), 4)
	assert.Len(t, batch, 4)
	seen := map[string]bool{}
	for _, ex := range batch {
		assert.False(t, seen[ex.InputText])
		seen[ex.InputText] = true
	}
}

func TestSamplerDrawClampsToDatasetSize(t *testing.T) {
	s := newSampler(newMulberry32(1))
	batch := s.draw(examples(3), 10)
	assert.Len(t, batch, 3)
}

func TestSamplerDrawEmptyDataset(t *testing.T) {
	s := newSampler(newMulberry32(1))
	batch := s.draw(examples(0), 5)
	assert.Empty(t, batch)
}

func TestSamplerDrawDoesNotMutateDataset(t *testing.T) {
	dataset := examples(5)
	original := make([]ports.Example, len(dataset))
	copy(original, dataset)

	s := newSampler(newMulberry32(1))
	s.draw(dataset, 3)

	assert.Equal(t, original, dataset)
}
