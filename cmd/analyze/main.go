package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/internal/config"
	"finanalyst-api/internal/logic"
	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
)

type report struct {
	Symbol     string                `json:"symbol"`
	Fetch      *logic.FetchResult    `json:"fetch"`
	Analysis   *logic.AnalysisResult `json:"analysis"`
	Prediction *forecast.Prediction  `json:"prediction,omitempty"`
	Error      string                `json:"error,omitempty"`
}

func parseSymbols(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		field = strings.ToUpper(field)
		if _, exists := seen[field]; exists {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	return out
}

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

func main() {
	var (
		configPath = flag.String("f", "etc/finanalyst.yaml", "the config file")
		symbolsRaw = flag.String("symbols", "BTCUSDT", "comma-separated list of trading pairs")
		interval   = flag.String("interval", "", "candle interval, defaults to the fetcher interval")
		limit      = flag.Int("limit", 0, "number of candles, defaults to the fetcher limit")
		predict    = flag.Bool("predict", false, "ask the model for a forecast after analysis")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{Level: "error"})
	logx.DisableStat()

	symbols := parseSymbols(*symbolsRaw)
	if len(symbols) == 0 {
		fatalf("no symbols provided; use --symbols to specify at least one")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if *interval == "" {
		*interval = cfg.Fetcher.Interval
	}
	if *limit <= 0 {
		*limit = cfg.Fetcher.Limit
	}

	if *predict && cfg.LLM.Value == nil {
		cfg.LLM.Value = config.MustLoadLLM()
	}

	svcCtx, err := svc.New(*cfg)
	if err != nil {
		fatalf("build service context: %v", err)
	}
	defer svcCtx.Close()
	if *predict && svcCtx.Forecaster == nil {
		fatalf("--predict: forecaster could not be configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := false
	reports := make([]report, 0, len(symbols))
	for _, symbol := range symbols {
		rep := run(ctx, svcCtx, symbol, *interval, *limit, *predict)
		if rep.Error != "" {
			failed = true
		}
		reports = append(reports, rep)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		fatalf("encode report: %v", err)
	}
	if failed {
		os.Exit(1)
	}
}

func run(ctx context.Context, svcCtx *svc.ServiceContext, symbol, interval string, limit int, predict bool) report {
	rep := report{Symbol: symbol}

	fetched, err := logic.NewDataFetcherLogic(ctx, svcCtx).Fetch(symbol, interval, limit, true)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.Fetch = fetched

	analysed, err := logic.NewTechnicalAnalysisLogic(ctx, svcCtx).Analyze(symbol, interval, fetched.S3Bucket, *fetched.S3Key)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	rep.Analysis = analysed

	if !predict {
		return rep
	}
	res, err := svcCtx.Forecaster.Forecast(ctx, &analysis.Snapshot{
		Symbol:         symbol,
		Interval:       interval,
		Indicators:     analysed.Indicators,
		MarketSnapshot: fetched.MarketSnapshot,
	})
	if err != nil {
		rep.Error = fmt.Sprintf("forecast: %v", err)
		return rep
	}
	if res.Invalid != nil {
		logx.Errorf("forecast for %s failed validation: %v", symbol, res.Invalid)
	}
	rep.Prediction = res.Prediction
	return rep
}
