package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/playsketch/internal/adapters/http/api"
	"github.com/okian/playsketch/internal/adapters/http/swagger"
	"github.com/okian/playsketch/internal/adapters/imagefetch"
	"github.com/okian/playsketch/internal/adapters/repository"
	"github.com/okian/playsketch/internal/adapters/vision"
	app "github.com/okian/playsketch/internal/app"
	"github.com/okian/playsketch/internal/config"
	"github.com/okian/playsketch/internal/domain/normalize"
	"github.com/okian/playsketch/internal/domain/quota"
	"github.com/okian/playsketch/internal/domain/validate"
	"github.com/okian/playsketch/pkg/logger"
	"github.com/okian/playsketch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6

	// writeSlack is added to the pipeline timeout so responses are not cut off.
	writeSlack = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open counter store", logger.String("counter_store", cfg.CounterStore), logger.Error(err))
		os.Exit(1)
	}
	defer closeStore()
	loggerInstance.Info(ctx, "counter store ready", logger.String("counter_store", cfg.CounterStore))

	handler, err := newHandler(ctx, cfg, store)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build handler", logger.Error(err))
		os.Exit(1)
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.RequestTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// openStore connects the configured counter store. The returned func
// releases its connections.
func openStore(ctx context.Context, cfg *config.Config) (quota.Store, func(), error) {
	switch cfg.CounterStore {
	case config.StoreRedis:
		client, err := repository.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewRedisStore(client, repository.WithKeyPrefix(cfg.RedisKeyPrefix))
		return store, func() { _ = client.Close() }, nil

	case config.StorePostgres:
		pool, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		return repository.NewMemoryStore(), func() {}, nil
	}
}

// newHandler wires the pipeline behind the API and docs routes.
func newHandler(ctx context.Context, cfg *config.Config, store quota.Store) (http.Handler, error) {
	auth, err := api.NewAuthenticator(cfg.APITokens)
	if err != nil {
		return nil, err
	}
	if len(cfg.APITokens) == 0 {
		logger.Get().Warn(ctx, "no api_tokens configured; every analysis request will be rejected")
	}

	tracker := quota.New(store,
		quota.WithDailyLimit(cfg.DailyLimit),
		quota.WithMonthlyLimit(cfg.MonthlyLimit),
	)
	loader := imagefetch.New(
		imagefetch.WithTimeout(cfg.ImageFetchTimeout),
		imagefetch.WithMaxBytes(cfg.ImageMaxBytes),
		imagefetch.WithAllowPrivateHosts(cfg.ImageAllowPrivateHosts),
	)
	analyzer := vision.New(
		vision.WithAPIKey(cfg.AnthropicAPIKey),
		vision.WithBaseURL(cfg.AnthropicBaseURL),
		vision.WithModel(cfg.Model),
		vision.WithMaxTokens(cfg.MaxTokens),
	)

	svc := app.New(tracker, loader, analyzer,
		app.WithTimeout(cfg.RequestTimeout),
		app.WithGate(validate.NewGate(validate.WithMinMeanConfidence(cfg.MinMeanConfidence))),
		app.WithNormalizer(normalize.New(
			normalize.WithDefaultLOSPercent(cfg.DefaultLOSPercent),
			normalize.WithLOSConfidenceThreshold(cfg.LOSConfidenceThreshold),
			normalize.WithSkillDefaultThreshold(cfg.SkillDefaultThreshold),
			normalize.WithLowConfidenceWarning(cfg.LowConfidenceWarning),
			normalize.WithRouteConfidenceThreshold(cfg.RouteConfidenceThreshold),
		)),
		app.WithParseOptions(validate.WithNotesMaxLength(cfg.NotesMaxLength)),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, auth).Register(ctx, mux)
	return mux, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
