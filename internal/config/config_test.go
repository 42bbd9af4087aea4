package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanalyst-api/pkg/llm"
	"finanalyst-api/pkg/market"
	_ "finanalyst-api/pkg/market/exchanges/binance"
	"finanalyst-api/pkg/storage"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// Test_moduleConfig_envExpansion verifies that module configs expand environment
// variables when loaded directly via their LoadConfig functions.
func Test_moduleConfig_envExpansion(t *testing.T) {
	dir := t.TempDir()
	llmPath := writeFile(t, dir, "llm.yaml", `
base_url: ${TEST_LLM_BASE_URL}
api_key: ${TEST_LLM_API_KEY}
default_model: ${TEST_LLM_MODEL}
timeout: 2s
`)
	mktPath := writeFile(t, dir, "market.yaml", `
default: binance
providers:
  binance:
    type: binance
    base_url: ${TEST_BINANCE_BASE}
    timeout: ${TEST_BINANCE_TIMEOUT}
    max_retries: 2
`)
	t.Setenv("TEST_LLM_BASE_URL", "https://llm.example/v1")
	t.Setenv("TEST_LLM_API_KEY", "test-key")
	t.Setenv("TEST_LLM_MODEL", "gpt-x")
	t.Setenv("TEST_BINANCE_BASE", "https://binance.local")
	t.Setenv("TEST_BINANCE_TIMEOUT", "7s")

	llmCfg, err := llm.LoadConfig(llmPath)
	require.NoError(t, err)
	assert.Equal(t, "https://llm.example/v1", llmCfg.BaseURL)
	assert.Equal(t, "test-key", llmCfg.APIKey)
	assert.Equal(t, "gpt-x", llmCfg.DefaultModel)
	assert.Equal(t, 2*time.Second, llmCfg.Timeout)

	mktCfg, err := market.LoadConfig(mktPath)
	require.NoError(t, err)
	p := mktCfg.Providers["binance"]
	require.NotNil(t, p)
	assert.Equal(t, "https://binance.local", p.BaseURL)
	assert.Equal(t, 7*time.Second, p.Timeout)
}

func TestLoadMainConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "llm.yaml", "api_key: k\ndefault_model: gpt-4o-mini\n")
	writeFile(t, dir, "market.yaml", "default: binance\nproviders:\n  binance:\n    type: binance\n")
	writeFile(t, dir, "prediction.tmpl", "{{ .IndicatorJSON }}\n")
	mainPath := writeFile(t, dir, "finanalyst.yaml", `
Name: finanalyst-api
Host: 127.0.0.1
Port: 8888
Env: test
Storage:
  Driver: local
  LocalPath: ./data
Forecast:
  PromptPath: prediction.tmpl
Scheduler:
  Symbols: [BTCUSDT, ETHUSDT]
LLM:
  File: llm.yaml
Market:
  File: market.yaml
`)

	cfg, err := Load(mainPath)
	require.NoError(t, err)

	assert.Equal(t, mainPath, cfg.MainPath())
	assert.Equal(t, dir, cfg.BaseDir())
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, storage.DriverLocal, cfg.Storage.Driver)
	assert.Equal(t, "finanalyst-storage", cfg.Storage.DataBucket)
	assert.Equal(t, 14, cfg.Analysis.RSIPeriod)
	assert.Equal(t, 50, cfg.Analysis.LongPeriod)
	assert.Equal(t, 600, cfg.Forecast.MaxTokens)
	assert.Equal(t, filepath.Join(dir, "prediction.tmpl"), cfg.Forecast.PromptPath)
	assert.Equal(t, "1h", cfg.Fetcher.Interval)
	assert.Equal(t, 100, cfg.Fetcher.Limit)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Scheduler.Symbols)
	assert.Equal(t, "@hourly", cfg.Scheduler.Spec)

	require.NotNil(t, cfg.LLM.Value)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Value.DefaultModel)
	assert.Equal(t, filepath.Join(dir, "llm.yaml"), cfg.LLM.File)
	require.NotNil(t, cfg.Market.Value)
	assert.Equal(t, "binance", cfg.Market.Value.Default)
}

func TestValidate_TTLBounds(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	require.NoError(t, cfg.Validate())

	cfg.TTL.Short = 0
	assert.Error(t, cfg.Validate())
	cfg.TTL.Short = 10
	cfg.TTL.Long = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	cfg.Env = "staging"
	assert.Error(t, cfg.Validate())
	cfg.Env = "prod"

	cfg.Storage.Driver = "gcs"
	assert.Error(t, cfg.Validate())
	cfg.Storage.Driver = storage.DriverS3

	cfg.Analysis.RSIPeriod = 0
	assert.Error(t, cfg.Validate())
}
