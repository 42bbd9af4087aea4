package config

import (
	"finanalyst-api/pkg/llm"
	"finanalyst-api/pkg/market"
)

// MustLoadLLM loads etc/llm.yaml from the project root and panics on error.
func MustLoadLLM() *llm.Config {
	return llm.MustLoad()
}

// MustLoadMarket loads the default market configuration and panics on error.
// Tools that only need candles use it without requiring the main config.
func MustLoadMarket() *market.Config {
	return market.MustLoad()
}
