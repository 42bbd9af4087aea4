package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/internal/cli"
	"finanalyst-api/internal/config"
	"finanalyst-api/internal/scheduler"
	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/journal"
)

const shutdownTimeout = 30 * time.Second // Grace period for a running job

func main() {
	var (
		configPath = flag.String("f", "etc/finanalyst.yaml", "the config file")
		once       = flag.Bool("once", false, "run the job once and exit")
	)
	flag.Parse()
	logx.DisableStat()

	appCfg, err := config.Load(*configPath)
	if err != nil {
		logx.Errorf("[main] load config: %v", err)
		os.Exit(1)
	}
	if appCfg.Market.Value == nil {
		appCfg.Market.Value = config.MustLoadMarket()
		logx.Info("[main] Market config: etc/market.yaml (default)")
	}
	cli.LogConfigSummary(appCfg)

	svcCtx, err := svc.New(*appCfg)
	if err != nil {
		logx.Errorf("[main] build service context: %v", err)
		os.Exit(1)
	}
	defer svcCtx.Close()

	sched, err := scheduler.New(svcCtx, journal.NewWriter(appCfg.Scheduler.JournalDir))
	if err != nil {
		logx.Errorf("[main] %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		rec := sched.RunOnce(ctx)
		logx.Infof("[main] run %s finished success=%t symbols=%d", rec.RunID, rec.Success, len(rec.Symbols))
		if !rec.Success {
			os.Exit(1)
		}
		return
	}

	sched.Start()
	logx.Info("[main] Scheduler started. Press Ctrl+C to stop.")

	<-ctx.Done()
	logx.Info("[main] Shutdown signal received, waiting for running job...")

	select {
	case <-sched.Stop().Done():
		logx.Info("[main] Scheduler stopped cleanly")
	case <-time.After(shutdownTimeout):
		logx.Info("[main] Shutdown timeout exceeded, forcing exit")
	}
}
