// cmd/inventory-service/main.go
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

	awsclient "franchise-inventory/internal/common/aws"
	"franchise-inventory/internal/common/camunda"
	"franchise-inventory/internal/common/config"
	"franchise-inventory/internal/common/database"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/observability"
	"franchise-inventory/internal/common/validation"
	"franchise-inventory/internal/events"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/storage/dynamo"
	"franchise-inventory/internal/storage/locationindex"
	"franchise-inventory/internal/storage/memory"
	"franchise-inventory/internal/storage/postgres"
	"franchise-inventory/internal/transport/httpapi"
	"franchise-inventory/pkg/registry"

	cp "franchise-inventory/internal/workers/product/create-product"
	dp "franchise-inventory/internal/workers/product/delete-product"
	tsr "franchise-inventory/internal/workers/product/top-stock-report"
	up "franchise-inventory/internal/workers/product/update-product"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backend is one wired storage backend.
type backend struct {
	franchises inventory.FranchiseRepository
	branches   inventory.BranchRepository
	products   inventory.ProductRepository
	ping       func(ctx context.Context) error
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.ForService(
		logger.New(cfg.Logging.Level, cfg.Logging.Format),
		cfg.App.Name, cfg.App.Version, cfg.App.Environment,
	)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting inventory service...", zap.String("backend", cfg.Storage.Backend))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	store, err := openBackend(ctx, cfg, log, zapLog)
	if err != nil {
		zapLog.Fatal("storage backend failed", zap.Error(err))
	}
	defer store.close()

	branches := store.branches
	if cfg.Storage.LocationIndex.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			rdb = database.NewRedis(cfg.Database.Redis)
			if err := rdb.Ping(ctx); err != nil {
				rdb.Close()
				return err
			}
			return nil
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		branches = locationindex.New(branches, rdb.Client, cfg.Storage.LocationIndex.KeyPrefix, log)
		zapLog.Info("Redis location index enabled")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.SNS.Enabled {
		snsClient, err := awsclient.NewSNSClient(ctx, awsclient.Options{
			Region:   cfg.Events.SNS.Region,
			Endpoint: cfg.Events.SNS.Endpoint,
		})
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publisher = events.NewSNSPublisher(snsClient, cfg.Events.SNS.TopicARN, log)
		zapLog.Info("SNS event publishing enabled", zap.String("topicArn", cfg.Events.SNS.TopicARN))
	}

	svc := inventory.NewService(store.franchises, branches, store.products,
		inventory.WithEmbeddedLimit(cfg.Inventory.EmbeddedProductLimit),
		inventory.WithTopStockLimit(cfg.Inventory.TopStockLimit),
		inventory.WithSeparatedCandidateLimit(cfg.Inventory.SeparatedCandidateLimit),
		inventory.WithBranchFanout(cfg.Inventory.BranchFanout),
		inventory.WithLogger(log),
		inventory.WithPublisher(publisher),
	)

	// --- Workers ---
	var pool *camunda.Pool
	if cfg.Camunda.Enabled {
		var zc *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zc, err = camunda.NewClient(ctx, cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zc.Close()

		reg, err := registry.LoadRegistry(cfg.Camunda.RegistryPath)
		if err != nil {
			zapLog.Fatal("activity registry load failed", zap.Error(err))
		}
		validator, err := validation.NewValidator(reg)
		if err != nil {
			zapLog.Fatal("activity schemas invalid", zap.Error(err))
		}

		pool = camunda.NewPool(zc.Zeebe(), log)
		pool.Start(cp.TaskType, config.GetWorkerConfig(cfg, cp.TaskType),
			cp.NewHandler(&cp.Config{Timeout: workerTimeout(cfg, cp.TaskType)}, svc, validator, log).Handle)
		pool.Start(up.TaskType, config.GetWorkerConfig(cfg, up.TaskType),
			up.NewHandler(&up.Config{Timeout: workerTimeout(cfg, up.TaskType)}, svc, validator, log).Handle)
		pool.Start(dp.TaskType, config.GetWorkerConfig(cfg, dp.TaskType),
			dp.NewHandler(&dp.Config{Timeout: workerTimeout(cfg, dp.TaskType)}, svc, validator, log).Handle)
		pool.Start(tsr.TaskType, config.GetWorkerConfig(cfg, tsr.TaskType),
			tsr.NewHandler(&tsr.Config{Timeout: workerTimeout(cfg, tsr.TaskType)}, svc, validator, log).Handle)
	}

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Inventory: svc,
		Logger:    log,
		Obs:       obs,
		Ready:     store.ping,
		Mode:      cfg.HTTP.Mode,
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if pool != nil {
		pool.Stop()
	}

	zapLog.Info("Inventory service stopped gracefully")
}

func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendDynamoDB:
		var ddb *database.DynamoDBClient
		err := retryWithBackoff(func() error {
			var err error
			ddb, err = database.NewDynamoDB(ctx, cfg.Database.DynamoDB)
			if err != nil {
				return err
			}
			return ddb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "DynamoDB connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("DynamoDB connected successfully")

		store := dynamo.New(ddb.Client, ddb.Tables, log)
		return &backend{
			franchises: store.Franchises(),
			branches:   store.Branches(),
			products:   store.Products(),
			ping:       ddb.Ping,
			close:      func() {},
		}, nil

	case config.BackendPostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")

		store := postgres.New(pg.DB, log)
		if err := store.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return &backend{
			franchises: store.Franchises(),
			branches:   store.Branches(),
			products:   store.Products(),
			ping:       pg.Ping,
			close:      func() { pg.Close() },
		}, nil

	default:
		zapLog.Warn("Using in-memory storage; data is lost on restart")
		store := memory.New()
		return &backend{
			franchises: store.Franchises(),
			branches:   store.Branches(),
			products:   store.Products(),
			ping:       func(context.Context) error { return nil },
			close:      func() {},
		}, nil
	}
}

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
}
