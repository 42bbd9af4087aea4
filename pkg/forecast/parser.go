package forecast

import (
	"encoding/json"
	"fmt"

	"finanalyst-api/pkg/llm"
)

// Parse decodes a model reply into a Prediction. Surrounding prose and
// markdown fences are tolerated.
func Parse(raw string) (*Prediction, error) {
	var p Prediction
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &p); err != nil {
		return nil, fmt.Errorf("forecast: parse model output: %w", err)
	}
	if p.Forecasts == nil {
		p.Forecasts = map[string]Horizon{}
	}
	if p.Risks == nil {
		p.Risks = []string{}
	}
	return &p, nil
}
