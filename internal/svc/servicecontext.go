package svc

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachestore "finanalyst-api/internal/cache"
	"finanalyst-api/internal/config"
	analysispersist "finanalyst-api/internal/persistence/analysis"
	marketpersist "finanalyst-api/internal/persistence/market"
	"finanalyst-api/pkg/analysis"
	"finanalyst-api/pkg/forecast"
	llmpkg "finanalyst-api/pkg/llm"
	marketpkg "finanalyst-api/pkg/market"
	"finanalyst-api/pkg/market/exchanges/binance"
	"finanalyst-api/pkg/storage"
)

type ServiceContext struct {
	Config config.Config

	LLMConfig         *llmpkg.Config
	LLM               llmpkg.LLMClient
	Forecaster        *forecast.Forecaster
	MarketConfig      *marketpkg.Config
	MarketProviders   map[string]marketpkg.Provider
	DefaultMarket     marketpkg.Provider
	DefaultMarketName string
	Store             storage.Store
	Builder           *analysis.Builder

	// Optional backends, nil unless configured.
	DBConn        sqlx.SqlConn
	Redis         *redis.Redis
	Cache         *cachestore.Store
	MarketPersist *marketpersist.Service
	Analyses      *analysispersist.Service
}

type persistenceAware interface {
	SetPersistence(marketpkg.Persistence)
}

// NewServiceContext builds the context or exits the process.
func NewServiceContext(c config.Config) *ServiceContext {
	svc, err := New(c)
	if err != nil {
		log.Fatalf("failed to build service context: %v", err)
	}
	return svc
}

// New wires every dependency described by c.
func New(c config.Config) (*ServiceContext, error) {
	builder, err := analysis.NewBuilder(c.Analysis)
	if err != nil {
		return nil, fmt.Errorf("analysis builder: %w", err)
	}
	store, err := storage.New(c.Storage)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	svc := &ServiceContext{
		Config:  c,
		Store:   store,
		Builder: builder,
	}

	if err := svc.initBackends(); err != nil {
		return nil, err
	}
	if err := svc.initMarket(); err != nil {
		return nil, err
	}
	if err := svc.initForecaster(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *ServiceContext) initBackends() error {
	c := s.Config
	if dsn := strings.TrimSpace(c.Postgres.DSN); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(c.Postgres.MaxOpen)
		db.SetMaxIdleConns(c.Postgres.MaxIdle)
		s.DBConn = sqlx.NewSqlConnFromDB(db)
	}
	if strings.TrimSpace(c.Redis.Host) != "" {
		rds, err := redis.NewRedis(c.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		s.Redis = rds
		s.Cache = cachestore.NewStore(rds, cachestore.NewTTLSet(c.TTL))
	}
	s.MarketPersist = marketpersist.NewService(marketpersist.Config{SQLConn: s.DBConn, Cache: s.Cache})
	s.Analyses = analysispersist.NewService(analysispersist.Config{SQLConn: s.DBConn, Cache: s.Cache})
	return nil
}

func (s *ServiceContext) initMarket() error {
	cfg := s.Config.Market.Value
	if cfg == nil {
		// Without a market file the Binance.US provider with defaults is used.
		s.MarketProviders = map[string]marketpkg.Provider{"binance": binance.NewProvider()}
	} else {
		providers, err := cfg.BuildProviders()
		if err != nil {
			return fmt.Errorf("build market providers: %w", err)
		}
		s.MarketConfig = cfg
		s.MarketProviders = providers
	}

	probe := s.MarketConfig
	if probe == nil {
		probe = &marketpkg.Config{}
	}
	provider, name, err := probe.DefaultProvider(s.MarketProviders)
	if err != nil {
		return err
	}
	s.DefaultMarket, s.DefaultMarketName = provider, name

	if s.MarketPersist != nil {
		for _, p := range s.MarketProviders {
			if aware, ok := p.(persistenceAware); ok {
				aware.SetPersistence(s.MarketPersist)
			}
		}
	}
	return nil
}

func (s *ServiceContext) initForecaster() error {
	cfg := s.Config.LLM.Value
	if cfg == nil {
		logx.Info("svc: no llm config, prediction tool disabled")
		return nil
	}
	llmCfg := cfg.Clone()
	if s.Config.IsTestEnv() && s.Config.Forecast.Model == "" {
		if _, ok := llmCfg.Model("test"); ok {
			llmCfg.DefaultModel = "test"
		}
	}
	client, err := llmpkg.NewClient(llmCfg)
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}
	f, err := forecast.New(s.Config.Forecast, client)
	if err != nil {
		return err
	}
	s.LLMConfig, s.LLM, s.Forecaster = llmCfg, client, f
	return nil
}

// Close releases the LLM client.
func (s *ServiceContext) Close() {
	if s.LLM != nil {
		_ = s.LLM.Close()
	}
}
