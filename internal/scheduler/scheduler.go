// Package scheduler runs the fetch and analysis chain on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/internal/config"
	"finanalyst-api/internal/logic"
	"finanalyst-api/internal/svc"
	"finanalyst-api/pkg/journal"
)

// DefaultSymbols are analysed when the config lists none.
var DefaultSymbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}

var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler owns the cron runner and the run journal.
type Scheduler struct {
	svcCtx  *svc.ServiceContext
	cfg     config.SchedulerConf
	journal *journal.Writer
	cron    *cron.Cron

	mu      sync.Mutex
	lastRun *journal.RunRecord
}

// New validates the cron spec and prepares the job. The journal may be nil.
func New(svcCtx *svc.ServiceContext, w *journal.Writer) (*Scheduler, error) {
	if svcCtx == nil {
		return nil, errors.New("scheduler: service context is required")
	}
	cfg := svcCtx.Config.Scheduler
	if strings.TrimSpace(cfg.Spec) == "" {
		cfg.Spec = "@hourly"
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = DefaultSymbols
	}
	if cfg.Interval == "" {
		cfg.Interval = svcCtx.Config.Fetcher.Interval
	}
	if cfg.Limit <= 0 {
		cfg.Limit = svcCtx.Config.Fetcher.Limit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	logger := cronLogger{}
	s := &Scheduler{
		svcCtx:  svcCtx,
		cfg:     cfg,
		journal: w,
		cron: cron.New(
			cron.WithParser(specParser),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
	if _, err := s.cron.AddFunc(cfg.Spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid spec %q: %w", cfg.Spec, err)
	}
	return s, nil
}

// Start begins firing the job in the background.
func (s *Scheduler) Start() {
	logx.Infof("scheduler: started spec=%s symbols=%v interval=%s", s.cfg.Spec, s.cfg.Symbols, s.cfg.Interval)
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running job
// has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// LastRun returns the most recent completed run, or nil.
func (s *Scheduler) LastRun() *journal.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// RunOnce fetches and analyses every configured symbol in turn. Symbol
// failures are recorded and do not stop the run.
func (s *Scheduler) RunOnce(ctx context.Context) *journal.RunRecord {
	rec := &journal.RunRecord{
		StartedAt: time.Now().UTC(),
		Interval:  s.cfg.Interval,
		Symbols:   make([]journal.SymbolResult, 0, len(s.cfg.Symbols)),
	}
	for _, symbol := range s.cfg.Symbols {
		if ctx.Err() != nil {
			break
		}
		rec.Symbols = append(rec.Symbols, s.runSymbol(ctx, strings.ToUpper(strings.TrimSpace(symbol))))
	}
	rec.FinishedAt = time.Now().UTC()
	rec.Success = !rec.Failed() && len(rec.Symbols) == len(s.cfg.Symbols)

	if s.journal != nil {
		if path, err := s.journal.WriteRun(rec); err != nil {
			logx.WithContext(ctx).Errorf("scheduler: journal write: %v", err)
		} else {
			logx.WithContext(ctx).Infof("scheduler: run %s journaled to %s", rec.RunID, path)
		}
	}

	s.mu.Lock()
	s.lastRun = rec
	s.mu.Unlock()
	return rec
}

func (s *Scheduler) runSymbol(parent context.Context, symbol string) journal.SymbolResult {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	res := journal.SymbolResult{Symbol: symbol}

	fetched, err := logic.NewDataFetcherLogic(ctx, s.svcCtx).Fetch(symbol, s.cfg.Interval, s.cfg.Limit, true)
	if err != nil {
		res.ErrorMessage = err.Error()
		logx.WithContext(ctx).Errorf("scheduler: fetch %s: %v", symbol, err)
		return finish(res, start)
	}
	res.Candles = fetched.Count
	if fetched.S3Key == nil {
		res.ErrorMessage = "fetch stored no candle file"
		return finish(res, start)
	}
	res.RawKey = *fetched.S3Key

	analysed, err := logic.NewTechnicalAnalysisLogic(ctx, s.svcCtx).Analyze(symbol, s.cfg.Interval, fetched.S3Bucket, res.RawKey)
	if err != nil {
		res.ErrorMessage = err.Error()
		logx.WithContext(ctx).Errorf("scheduler: analyse %s: %v", symbol, err)
		return finish(res, start)
	}
	ind := analysed.Indicators
	res.IndicatorKey = analysed.IndicatorFileKey
	res.RSI = ind.RSI.Value
	res.RSISignal = ind.RSI.Signal
	res.SMASignal = ind.SMA.Signal
	res.EMASignal = ind.EMA.Signal
	logx.WithContext(ctx).Infof("scheduler: %s RSI=%.2f (%s) SMA=%s EMA=%s", symbol, res.RSI, res.RSISignal, res.SMASignal, res.EMASignal)
	return finish(res, start)
}

func finish(res journal.SymbolResult, start time.Time) journal.SymbolResult {
	res.ElapsedMillis = time.Since(start).Milliseconds()
	return res
}

// cronLogger routes robfig/cron logs to logx.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logx.Debugf("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logx.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
