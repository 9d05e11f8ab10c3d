// Package loaders implements ports.DataLoader against a JSONL file and
// against the Postgres TrainingExampleRepository, grounded on the
// read-all-lines/skip-malformed pattern storage.Storage.ReadJSONL uses for
// its own append-only example logs.
package loaders

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/longregen/promptune/internal/domain"
	"github.com/longregen/promptune/internal/ports"
)

// JSONLLoader implements ports.DataLoader by reading one ports.Example per
// line of a file, each line holding {"input_text": "...", "target": "..."}.
type JSONLLoader struct {
	Path string
}

var _ ports.DataLoader = (*JSONLLoader)(nil)

func NewJSONLLoader(path string) *JSONLLoader {
	return &JSONLLoader{Path: path}
}

type jsonlRow struct {
	InputText string `json:"input_text"`
	Target    string `json:"target"`
}

// Load reads every line of the file as a ports.Example. A malformed or
// incomplete line aborts the load with an error rather than being skipped,
// since a silently-shrunk training set would change a run's outcome without
// any visible signal.
func (l *JSONLLoader) Load(ctx context.Context) ([]ports.Example, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", l.Path, err)
	}
	defer f.Close()

	var examples []ports.Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var row jsonlRow
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", l.Path, lineNum, err)
		}
		if row.InputText == "" || row.Target == "" {
			return nil, fmt.Errorf("%s:%d: %w", l.Path, lineNum, domain.ErrMalformedExample)
		}

		examples = append(examples, ports.Example{InputText: row.InputText, Target: row.Target})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", l.Path, err)
	}

	if len(examples) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	return examples, nil
}
