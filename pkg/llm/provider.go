package llm

import "strings"

const (
	modelSeparator = "/"
	// nativeProvider is the vendor the OpenAI-compatible endpoint serves
	// without a routing prefix.
	nativeProvider = "openai"
)

// WireModel maps a configured alias such as "forecaster" to the model string
// sent on the wire. Routed providers keep their "provider/model" prefix, while
// native models and unknown aliases go out bare.
func (m ModelConfig) WireModel(alias string) string {
	alias = strings.TrimSpace(alias)
	if strings.Contains(alias, modelSeparator) {
		return alias
	}
	name := strings.TrimSpace(m.ModelName)
	if name == "" {
		name = alias
	}
	provider := strings.ToLower(strings.TrimSpace(m.Provider))
	if provider == "" || provider == nativeProvider || strings.Contains(name, modelSeparator) {
		return name
	}
	return provider + modelSeparator + name
}

// SplitModel breaks a wire model string into its routing prefix and name.
// A bare name reports the native provider.
func SplitModel(model string) (provider, name string) {
	if p, n, ok := strings.Cut(model, modelSeparator); ok {
		return p, n
	}
	return nativeProvider, model
}
