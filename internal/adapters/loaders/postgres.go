package loaders

import (
	"context"

	"github.com/longregen/promptune/internal/domain"
	"github.com/longregen/promptune/internal/ports"
)

// PostgresLoader implements ports.DataLoader over a TrainingExampleRepository
// dataset, letting a run draw from examples imported or synthesized into
// Postgres instead of a flat JSONL file.
type PostgresLoader struct {
	repo    ports.TrainingExampleRepository
	dataset string
}

var _ ports.DataLoader = (*PostgresLoader)(nil)

func NewPostgresLoader(repo ports.TrainingExampleRepository, dataset string) *PostgresLoader {
	return &PostgresLoader{repo: repo, dataset: dataset}
}

func (l *PostgresLoader) Load(ctx context.Context) ([]ports.Example, error) {
	rows, err := l.repo.ListByDataset(ctx, l.dataset)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	examples := make([]ports.Example, 0, len(rows))
	for _, row := range rows {
		if row.InputText == "" || row.Target == "" {
			return nil, domain.ErrMalformedExample
		}
		examples = append(examples, ports.Example{InputText: row.InputText, Target: row.Target})
	}

	return examples, nil
}
