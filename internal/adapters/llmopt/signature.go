package llmopt

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/core"
)

// Signature wraps dspy-go's core.Signature with a human-readable name,
// letting a Proposer document the shape of the LLM call it is about to make
// the same way the rest of the pipeline describes its own calls.
type Signature struct {
	core.Signature
	Name string
}

// MustParseSignature parses sig or panics; used only for package-level
// signature declarations, never on a request path.
func MustParseSignature(sig string) Signature {
	s, err := ParseSignature(sig)
	if err != nil {
		panic(fmt.Sprintf("failed to parse signature: %v", err))
	}
	return s
}

// ParseSignature builds a Signature from a string like
// "input1, input2 -> output1, output2".
func ParseSignature(sig string) (Signature, error) {
	parts := strings.Split(sig, "->")
	if len(parts) != 2 {
		return Signature{}, fmt.Errorf("invalid signature format: %s", sig)
	}

	inputFields := parseFields(strings.TrimSpace(parts[0]))
	outputFields := parseFields(strings.TrimSpace(parts[1]))

	inputs := make([]core.InputField, len(inputFields))
	for i, f := range inputFields {
		inputs[i] = core.InputField{Field: f}
	}

	outputs := make([]core.OutputField, len(outputFields))
	for i, f := range outputFields {
		outputs[i] = core.OutputField{Field: f}
	}

	return Signature{
		Signature: core.NewSignature(inputs, outputs),
		Name:      generateName(sig),
	}, nil
}

func parseFields(fieldStr string) []core.Field {
	if fieldStr == "" {
		return nil
	}

	parts := strings.Split(fieldStr, ",")
	fields := make([]core.Field, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var name string
		if strings.Contains(part, ":") {
			name = strings.TrimSpace(strings.SplitN(part, ":", 2)[0])
		} else {
			name = part
		}

		fields = append(fields, core.NewField(name))
	}

	return fields
}

func generateName(sig string) string {
	name := strings.ReplaceAll(sig, "->", "_to_")
	name = strings.ReplaceAll(name, ",", "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	return name
}
