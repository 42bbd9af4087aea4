package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/llm"
	"finanalyst-api/pkg/prompt"
)

// Result carries the prediction plus the exchange that produced it.
type Result struct {
	Prediction *Prediction
	Prompt     string
	Raw        string
	// Parsed is false when Prediction is the fallback.
	Parsed     bool
	// Invalid holds validation problems of a parsed reply.
	Invalid    error
	Digest     string
	Elapsed    time.Duration
}

// Forecaster turns indicator snapshots into predictions through an LLM.
type Forecaster struct {
	cfg Config
	llm llm.LLMClient
	tpl *prompt.Template
}

// New builds a Forecaster, loading cfg.PromptPath or the built-in prompt.
func New(cfg Config, client llm.LLMClient) (*Forecaster, error) {
	if client == nil {
		return nil, errors.New("forecast: llm client is required")
	}
	tpl, err := NewPromptTemplate(cfg.PromptPath)
	if err != nil {
		return nil, err
	}
	return &Forecaster{cfg: cfg, llm: client, tpl: tpl}, nil
}

// Forecast asks the model for a prediction on snap. LLM failures are
// returned as errors; an unparseable reply yields the HOLD fallback.
func (f *Forecaster) Forecast(ctx context.Context, snap *analysis.Snapshot) (*Result, error) {
	inputs, err := BuildPromptInputs(snap)
	if err != nil {
		return nil, err
	}
	promptStr, err := f.tpl.Render(inputs)
	if err != nil {
		return nil, err
	}

	req := &llm.ChatRequest{
		Model:    f.cfg.Model,
		Messages: []llm.Message{llm.UserMessage(promptStr)},
	}
	if f.cfg.MaxTokens > 0 {
		maxTokens := f.cfg.MaxTokens
		req.MaxTokens = &maxTokens
	}

	callCtx := ctx
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := f.llm.Chat(callCtx, req)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Prompt:  promptStr,
		Raw:     resp.Text(),
		Digest:  f.tpl.Digest(),
		Elapsed: time.Since(start),
	}

	pred, err := Parse(res.Raw)
	if err != nil {
		logx.WithContext(ctx).Errorf("forecast: %s: %v", snap.Symbol, err)
		pred = Fallback(snap.Symbol)
	} else {
		res.Parsed = true
		if verr := Validate(pred); verr != nil {
			res.Invalid = verr
			logx.WithContext(ctx).Infof("forecast: %s: %v", snap.Symbol, verr)
		}
		logx.WithContext(ctx).Infof("forecast: parsed prediction symbol=%s recommendation=%s", pred.Symbol, pred.Recommendation)
	}
	if snap.MarketSnapshot != nil {
		pred.MarketSnapshot = snap.MarketSnapshot
	}
	res.Prediction = pred
	return res, nil
}
