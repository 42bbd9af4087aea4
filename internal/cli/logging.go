package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/internal/config"
	"finanalyst-api/pkg/confkit"
	"finanalyst-api/pkg/storage"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	storageLine := fmt.Sprintf("Storage: %s (data=%s, indicators=%s, predictions=%s)",
		cfg.Storage.Driver, cfg.Storage.DataBucket, cfg.Storage.IndicatorBucket(), cfg.Storage.PredictionsBucket)
	if cfg.Storage.Driver == storage.DriverLocal {
		storageLine += fmt.Sprintf(" at %s", cfg.Storage.LocalPath)
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		storageLine,
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("Indicators: RSI(%d) MA(%d/%d)", cfg.Analysis.RSIPeriod, cfg.Analysis.ShortPeriod, cfg.Analysis.LongPeriod),
		fmt.Sprintf("Fetcher: source=%s interval=%s limit=%d", cfg.Fetcher.Source, cfg.Fetcher.Interval, cfg.Fetcher.Limit),
		fmt.Sprintf("Scheduler: spec=%s symbols=%s", cfg.Scheduler.Spec, symbolsLine(cfg.Scheduler.Symbols)),
		sectionLine("LLM config", cfg.LLM),
		sectionLine("Market config", cfg.Market),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func symbolsLine(symbols []string) string {
	if len(symbols) == 0 {
		return "default"
	}
	return strings.Join(symbols, ",")
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
