package id

import (
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/longregen/promptune/internal/ports"
)

// Generator implements ports.IDGenerator using nanoid.
type Generator struct{}

var _ ports.IDGenerator = (*Generator)(nil)

func New() *Generator {
	return &Generator{}
}

func (g *Generator) generate(prefix string) string {
	id, err := gonanoid.New(21)
	if err != nil {
		return prefix + "_fallback"
	}
	return prefix + "_" + id
}

// GenerateRunID mints an OptimizationRun identifier.
func (g *Generator) GenerateRunID() string {
	return g.generate("run")
}

// GenerateTrialID mints a TrialRecord identifier.
func (g *Generator) GenerateTrialID() string {
	return g.generate("trial")
}

// GenerateExampleID mints a TrainingExample identifier.
func (g *Generator) GenerateExampleID() string {
	return g.generate("ex")
}

// GenerateRequestID mints a "req"-prefixed identifier for one HTTP/WebSocket
// request.
func (g *Generator) GenerateRequestID() string {
	return g.generate("req")
}
