// Package outputs implements ports.Outputter — receiving the best PromptSet
// a run found and persisting it somewhere durable, since the optimizer core
// itself only ever holds the winning PromptSet in memory (see
// internal/optimizer's Non-goals).
package outputs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/longregen/promptune/internal/ports"
)

// JSONFileOutputter writes the final PromptSet to a JSON file, one
// Instruction/Demonstrations entry per stage, suitable for a pipeline to
// load back on its next run.
type JSONFileOutputter struct {
	Path string
}

var _ ports.Outputter = (*JSONFileOutputter)(nil)

func NewJSONFileOutputter(path string) *JSONFileOutputter {
	return &JSONFileOutputter{Path: path}
}

func (o *JSONFileOutputter) Output(ctx context.Context, prompts ports.PromptSet) error {
	if err := os.MkdirAll(filepath.Dir(o.Path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding prompt set: %w", err)
	}

	if err := os.WriteFile(o.Path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", o.Path, err)
	}

	return nil
}
