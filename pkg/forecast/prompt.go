package forecast

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/prompt"
)

//go:embed prediction_prompt.tmpl
var defaultPrompt string

// PromptInputs is the data the prompt template sees.
type PromptInputs struct {
	Symbol        string
	Horizons      []string
	IndicatorJSON string
}

// NewPromptTemplate loads the template at path, or the built-in one when path is empty.
func NewPromptTemplate(path string) (*prompt.Template, error) {
	if path == "" {
		return prompt.Parse("prediction_prompt.tmpl", defaultPrompt, nil)
	}
	return prompt.NewTemplate(path, nil)
}

// BuildPromptInputs serialises snap compactly for the prompt.
func BuildPromptInputs(snap *analysis.Snapshot) (PromptInputs, error) {
	if snap == nil {
		return PromptInputs{}, fmt.Errorf("forecast: snapshot is required")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return PromptInputs{}, fmt.Errorf("forecast: encode snapshot: %w", err)
	}
	return PromptInputs{
		Symbol:        snap.Symbol,
		Horizons:      Horizons,
		IndicatorJSON: string(data),
	}, nil
}
