package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/app"
	"github.com/kailas-cloud/usersearch/internal/config"
	"github.com/kailas-cloud/usersearch/internal/db/gormdb"
	"github.com/kailas-cloud/usersearch/internal/domain"
	logpkg "github.com/kailas-cloud/usersearch/internal/logger"
	chiTransport "github.com/kailas-cloud/usersearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/usersearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/usersearch/internal/usecase/search"
	usageuc "github.com/kailas-cloud/usersearch/internal/usecase/usage"
	"github.com/kailas-cloud/usersearch/internal/usecase/warmup"
	"github.com/kailas-cloud/usersearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting usersearch API server",
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer a.Close()

	// Pass nil interfaces (not typed nil pointers) for disabled parts.
	var (
		ranker     searchuc.Ranker
		chat       chiTransport.Chatter
		warmModel  warmup.Model
		cachePing  healthuc.Pinger
		modelCheck healthuc.ModelChecker
		budget     usageuc.BudgetReader
	)
	if a.Model != nil {
		ranker, chat, warmModel = a.Model, a.Model, a.Model
		budget = a.Budget
		if hc, ok := a.Completer().(domain.HealthChecker); ok {
			modelCheck = hc
		}
	}
	if a.Redis != nil {
		cachePing = a.Redis
	}

	searchSvc := searchuc.New(a.Parser, a.Users, ranker, logger)
	usageSvc := usageuc.New(budget, cfg.LLM.Provider)
	healthSvc := healthuc.New(gormdb.Pinger{DB: a.DB}, cachePing, modelCheck)

	if cfg.Warmup.Enabled {
		go runWarmup(ctx, warmModel, a, logger)
	}

	server := chiTransport.NewServer(searchSvc, chat, a.Cache, usageSvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// a.Close (deferred) flushes the file cache tier.
	logger.Info("Server stopped gracefully")
}

func runWarmup(ctx context.Context, model warmup.Model, a *app.App, logger *zap.Logger) {
	w, err := warmup.New(model, a.Parser, a.Config.Warmup.Queries, a.Config.Warmup.PoolSize, logger)
	if err != nil {
		logger.Warn("Warmup skipped", zap.Error(err))
		return
	}
	defer w.Release()
	w.Run(ctx)
}
