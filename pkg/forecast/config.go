package forecast

import "time"

// Config controls prompt rendering and the model call.
type Config struct {
	// PromptPath overrides the built-in prompt template.
	PromptPath string        `json:",optional"`
	Model      string        `json:",optional"`
	MaxTokens  int           `json:",default=600"`
	Timeout    time.Duration `json:",default=90s"`
}

// DefaultConfig mirrors the go-zero defaults for callers that build Config by hand.
func DefaultConfig() Config {
	return Config{MaxTokens: 600, Timeout: 90 * time.Second}
}
