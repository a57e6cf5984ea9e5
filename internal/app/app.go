// Package app assembles the service components from configuration. It is
// shared by the server and the admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kailas-cloud/usersearch/internal/config"
	"github.com/kailas-cloud/usersearch/internal/db/gormdb"
	dbRedis "github.com/kailas-cloud/usersearch/internal/db/redis"
	"github.com/kailas-cloud/usersearch/internal/detect"
	"github.com/kailas-cloud/usersearch/internal/domain"
	"github.com/kailas-cloud/usersearch/internal/metrics"
	budgetrepo "github.com/kailas-cloud/usersearch/internal/repository/budget"
	"github.com/kailas-cloud/usersearch/internal/repository/filecache"
	querycacherepo "github.com/kailas-cloud/usersearch/internal/repository/querycache"
	userrepo "github.com/kailas-cloud/usersearch/internal/repository/user"
	ollamaTransport "github.com/kailas-cloud/usersearch/internal/transport/ollama"
	openaiTransport "github.com/kailas-cloud/usersearch/internal/transport/openai"
	"github.com/kailas-cloud/usersearch/internal/usecase/llm"
	"github.com/kailas-cloud/usersearch/internal/usecase/parser"
	querycacheuc "github.com/kailas-cloud/usersearch/internal/usecase/querycache"
)

// App holds the wired components. Optional parts are nil when disabled.
type App struct {
	Config config.Config
	Logger *zap.Logger

	DB     *gorm.DB
	Users  *userrepo.Repo
	Redis  *dbRedis.Store
	Cache  *querycacheuc.Service
	Budget *llm.BudgetTracker
	Model  *llm.Client
	Parser *parser.Service

	completer domain.Completer
}

// New connects to the stores and builds the query pipeline. The cache is
// opened (file tier loaded) before New returns.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	metrics.RegisterModelMetrics()
	metrics.RegisterSearchMetrics()

	a := &App{Config: cfg, Logger: logger}

	gdb, err := gormdb.Open(&gormdb.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.Path,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.DB = gdb
	a.Users = userrepo.New(gdb)
	if cfg.Database.AutoMigrate {
		if err := a.Users.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Redis = connectRedis(ctx, cfg.Redis, logger)

	if err := a.buildModel(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildCache(ctx); err != nil {
		a.Close()
		return nil, err
	}

	mode, err := parser.ParseMode(cfg.Parser.Mode)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("parser mode: %w", err)
	}
	// Pass nil interfaces, not typed nil pointers.
	var model parser.Model
	if a.Model != nil {
		model = a.Model
	}
	a.Parser = parser.New(mode, a.Cache, detect.Default(), model, logger)

	logger.Info("Components ready",
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("redis", a.Redis != nil),
		zap.Bool("model", a.Model != nil),
		zap.String("parser_mode", string(mode)),
	)
	return a, nil
}

// Completer returns the raw provider for health checks, nil when disabled.
func (a *App) Completer() domain.Completer {
	return a.completer
}

// Close flushes the cache and releases connections.
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("Failed to flush query cache", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if err := gormdb.Close(a.DB); err != nil {
			a.Logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}

// connectRedis returns nil when Redis is disabled or not ready in time;
// the dependent tiers then run without it.
func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *dbRedis.Store {
	if !cfg.Enabled {
		return nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("Redis disabled", zap.Error(err))
		return nil
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Redis not ready, shared cache disabled", zap.Error(err))
		store.Close()
		return nil
	}
	logger.Info("Connected to Redis", zap.Strings("addrs", cfg.Addrs))
	return store
}

func (a *App) buildCache(ctx context.Context) error {
	var shared querycacheuc.SharedTier
	if a.Redis != nil {
		ttl := time.Duration(a.Config.Cache.TTLHours) * time.Hour
		shared = querycacherepo.New(a.Redis, ttl, metrics.CacheLookupsTotal, a.Logger)
	}
	var file querycacheuc.FileTier
	if a.Config.Cache.FilePath != "" {
		file = filecache.New(a.Config.Cache.FilePath, a.Logger)
	}

	a.Cache = querycacheuc.New(shared, file, a.Config.Cache.FlushEvery, metrics.CacheLookupsTotal, a.Logger)
	if err := a.Cache.Open(ctx); err != nil {
		return fmt.Errorf("open query cache: %w", err)
	}
	return nil
}

// buildModel assembles the completer chain: provider -> instrumented (budget).
func (a *App) buildModel(ctx context.Context) error {
	cfg := a.Config.LLM
	if !cfg.Enabled {
		return nil
	}

	base, err := newCompleter(cfg, a.Logger)
	if err != nil {
		return err
	}
	a.completer = base

	action := llm.BudgetActionWarn
	if cfg.Budget.Action == string(llm.BudgetActionReject) {
		action = llm.BudgetActionReject
	}
	a.Budget = llm.NewBudgetTracker(
		cfg.Provider, cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, a.Logger,
	)
	if a.Redis != nil {
		a.Budget.WithStore(ctx, budgetrepo.New(a.Redis, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
	}

	instrumented := llm.NewInstrumentedCompleter(base, cfg.Provider, cfg.Model, a.Budget, a.Logger)
	a.Model = llm.New(instrumented, llm.Config{
		MaxConcurrent:  cfg.MaxConcurrent,
		QueueTimeout:   time.Duration(cfg.QueueTimeoutSec) * time.Second,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSec) * time.Second,
	}, a.Logger)

	a.Logger.Info("Model client created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int64("max_concurrent", cfg.MaxConcurrent),
	)
	return nil
}

var errUnknownProvider = errors.New("unknown llm provider")

func newCompleter(cfg config.LLMConfig, logger *zap.Logger) (domain.Completer, error) {
	switch cfg.Provider {
	case "openai":
		return openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			JSONMode:  cfg.JSONMode,
			Provider:  cfg.Provider,
			Timeout:   time.Duration(cfg.RequestTimeoutSec) * time.Second,
			Logger:    logger,
		}), nil
	case "ollama":
		c, err := ollamaTransport.NewCompleter(&ollamaTransport.Config{
			ServerURL: cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			JSONMode:  cfg.JSONMode,
			Timeout:   time.Duration(cfg.RequestTimeoutSec) * time.Second,
			Provider:  cfg.Provider,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create ollama completer: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownProvider, cfg.Provider)
	}
}
