// The worker binary processes background media uploads: it reads spooled
// files enqueued by the API, moves their bytes into object storage and flips
// the owning record's file key.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"catalog_portal_backend/internal/adapters/storage"
	catalogrepo "catalog_portal_backend/internal/catalog/repository"
	collateralrepo "catalog_portal_backend/internal/collateral/repository"
	"catalog_portal_backend/internal/events"
	"catalog_portal_backend/internal/media"
	"catalog_portal_backend/platform/config"
	"catalog_portal_backend/platform/db"
	"catalog_portal_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting media worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	spooler := media.NewSpooler(cfg.GetMediaSpoolDir())

	catalogRepo := catalogrepo.New(pool)
	collateralRepo := collateralrepo.New(pool)

	stores := map[string]media.TargetStore{
		media.TargetCollateral:   media.TargetStoreFunc(collateralRepo.SetFileKey),
		media.TargetProductPDF:   media.TargetStoreFunc(catalogRepo.SetProductPDFKey),
		media.TargetProductImage: media.TargetStoreFunc(catalogRepo.SetProductImageKey),
	}
	buckets := media.Buckets{
		Collateral:   cfg.GetMinioBucketCollateral(),
		ProductMedia: cfg.GetMinioBucketProductMedia(),
	}

	worker, err := media.NewWorker(cfg, storageSvc, buckets, stores, spooler, eventBus, log)
	if err != nil {
		log.Error("failed to initialize media worker", "error", err)
		panic("failed to initialize media worker: " + err.Error())
	}

	log.Info("media worker running", "concurrency", cfg.GetAsynqConcurrency())
	worker.Run(ctx)
	log.Info("media worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}
