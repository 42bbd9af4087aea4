package binance

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"finanalyst-api/pkg/market"
)

const (
	defaultProviderTimeout = 10 * time.Second
	defaultTickerTTL       = 5 * time.Second
)

// Provider wraps Binance client calls behind the generic market.Provider contract.
type Provider struct {
	client      *Client
	timeout     time.Duration
	tickerTTL   time.Duration
	persistence market.Persistence
	providerID  string

	cacheMu sync.RWMutex
	tickers map[string]cachedTicker
}

type cachedTicker struct {
	snapshot  *market.Snapshot
	expiresAt time.Time
}

type providerConfig struct {
	timeout      time.Duration
	tickerTTL    time.Duration
	clientConfig []Option
}

// ProviderOption customises the Binance provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithTickerTTL sets how long 24h tickers are reused. Zero disables caching.
func WithTickerTTL(ttl time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if ttl >= 0 {
			cfg.tickerTTL = ttl
		}
	}
}

// WithClientOptions passes options to the underlying client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientConfig = append(cfg.clientConfig, options...)
	}
}

// NewProvider constructs a Binance market provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout:   defaultProviderTimeout,
		tickerTTL: defaultTickerTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:    NewClient(cfg.clientConfig...),
		timeout:   cfg.timeout,
		tickerTTL: cfg.tickerTTL,
		tickers:   make(map[string]cachedTicker),
	}
}

func init() {
	market.RegisterProvider("binance", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{WithBaseURL(cfg.BaseURL)}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.MaxRetries > 0 {
			clientOptions = append(clientOptions, WithMaxRetries(cfg.MaxRetries))
		}
		if cfg.RetryWait > 0 {
			clientOptions = append(clientOptions, WithRetryWait(cfg.RetryWait))
		}
		opts = append(opts, WithClientOptions(clientOptions...))
		provider := NewProvider(opts...)
		provider.providerID = name
		return provider, nil
	})
}

// Klines implements market.Provider.
func (p *Provider) Klines(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	candles, err := p.client.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	p.persistCandles(ctx, strings.ToUpper(symbol), interval, candles)
	return candles, nil
}

// Ticker24h implements market.Provider.
func (p *Provider) Ticker24h(ctx context.Context, symbol string) (*market.Snapshot, error) {
	symbol = strings.ToUpper(symbol)
	if snap, ok := p.loadTicker(symbol); ok {
		return snap, nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	snap, err := p.client.GetTicker24h(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.persistTicker(ctx, snap)
	p.storeTicker(symbol, snap)
	return snap, nil
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Provider) loadTicker(symbol string) (*market.Snapshot, bool) {
	if p.tickerTTL <= 0 {
		return nil, false
	}
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	entry, ok := p.tickers[symbol]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	copied := *entry.snapshot
	return &copied, true
}

func (p *Provider) storeTicker(symbol string, snap *market.Snapshot) {
	if p.tickerTTL <= 0 || snap == nil {
		return
	}
	copied := *snap
	p.cacheMu.Lock()
	p.tickers[symbol] = cachedTicker{snapshot: &copied, expiresAt: time.Now().Add(p.tickerTTL)}
	p.cacheMu.Unlock()
}

func (p *Provider) providerName() string {
	if p.providerID != "" {
		return p.providerID
	}
	return "binance"
}
