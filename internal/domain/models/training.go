package models

import "time"

// TrainingExample is the persisted form of one ports.Example: an
// input/target pair loaded into a run's dataset. The Postgres-backed
// DataLoader (internal/adapters/loaders) reads these; the JSONL-backed one
// does not use this type at all, since it reads straight into ports.Example.
type TrainingExample struct {
	ID        string     `json:"id"`
	Dataset   string     `json:"dataset"`
	InputText string     `json:"input_text"`
	Target    string     `json:"target"`
	Source    string     `json:"source"` // imported, synthetic
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Training example source constants
const (
	SourceImported  = "imported"
	SourceSynthetic = "synthetic"
)

func NewTrainingExample(id, dataset, inputText, target, source string) *TrainingExample {
	return &TrainingExample{
		ID:        id,
		Dataset:   dataset,
		InputText: inputText,
		Target:    target,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}
