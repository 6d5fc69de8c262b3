package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/dago-hbs-renderer/internal/config"
	"github.com/aescanero/dago-hbs-renderer/internal/eval/cel"
	"github.com/aescanero/dago-hbs-renderer/internal/handlebars"
	"github.com/aescanero/dago-hbs-renderer/internal/helpers"
	"github.com/aescanero/dago-hbs-renderer/internal/partials"
	"github.com/aescanero/dago-hbs-renderer/internal/worker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting render worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	engine := initEngine(cfg, logger)

	if err := loadPartials(ctx, cfg, redisClient, engine, logger); err != nil {
		logger.Warn("some partials could not be loaded", zap.Error(err))
	}
	logger.Info("engine initialized", zap.Int("partials", engine.PartialCount()))

	w := worker.NewWorker(cfg, redisClient, engine, logger)
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	healthServer := worker.NewHealthServer(cfg.HealthPort, redisClient, engine, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("render worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	if err := w.Stop(10 * time.Second); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	logger.Info("worker stopped")
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// initEngine builds the engine with the helper libraries registered
func initEngine(cfg *config.Config, logger *zap.Logger) *handlebars.Engine {
	engine := handlebars.New(
		handlebars.WithLogger(logger.Named("template")),
		handlebars.WithMaxDepth(cfg.MaxDepth),
	)

	var evaluator *cel.Evaluator
	if cfg.CELEnabled {
		evaluator = cel.NewEvaluator()
	}
	helpers.RegisterAll(engine, evaluator)
	return engine
}

// loadPartials registers the Redis library, then the directory library over it.
// With PARTIALS_SYNC the directory library is written back to Redis.
func loadPartials(ctx context.Context, cfg *config.Config, client *redis.Client, engine *handlebars.Engine, logger *zap.Logger) error {
	loader := partials.NewLoader(logger)
	var errs error

	var fromRedis map[string]string
	if cfg.PartialsKey != "" {
		lib, err := loader.LoadRedis(ctx, client, cfg.PartialsKey)
		errs = multierr.Append(errs, err)
		fromRedis = lib
	}

	var fromDir map[string]string
	if cfg.PartialsDir != "" {
		lib, err := loader.LoadDir(cfg.PartialsDir)
		errs = multierr.Append(errs, err)
		fromDir = lib
	}

	partials.Register(engine, partials.Merge(fromRedis, fromDir))

	if cfg.PartialsSync {
		errs = multierr.Append(errs, loader.SaveRedis(ctx, client, cfg.PartialsKey, fromDir))
	}
	return errs
}
