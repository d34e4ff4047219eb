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
	"catalog_portal_backend/internal/assembly"
	"catalog_portal_backend/internal/catalog"
	"catalog_portal_backend/internal/clients"
	"catalog_portal_backend/internal/collateral"
	"catalog_portal_backend/internal/events"
	apphttp "catalog_portal_backend/internal/http"
	"catalog_portal_backend/internal/http/router"
	"catalog_portal_backend/internal/media"
	"catalog_portal_backend/internal/sharing"
	"catalog_portal_backend/migrations"
	"catalog_portal_backend/platform/config"
	"catalog_portal_backend/platform/db"
	"catalog_portal_backend/platform/logger"
	"catalog_portal_backend/platform/validator"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for file uploads and merged documents (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "collateral", cfg.GetMinioBucketCollateral())
	ensureBucket(ctx, log, storageSvc, "product-media", cfg.GetMinioBucketProductMedia())
	ensureBucket(ctx, log, storageSvc, "merged-pdfs", cfg.GetMinioBucketMergedPDFs())
	log.Info(
		"storage service initialized",
		"collateralBucket", cfg.GetMinioBucketCollateral(),
		"productMediaBucket", cfg.GetMinioBucketProductMedia(),
		"mergedPDFsBucket", cfg.GetMinioBucketMergedPDFs(),
	)

	// Background upload pipeline: files spool to disk, the task queue carries
	// the spool path, the worker binary moves bytes into storage.
	spooler := media.NewSpooler(cfg.GetMediaSpoolDir())
	queueClient, err := media.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize upload queue client", "error", err)
		panic("failed to initialize upload queue client: " + err.Error())
	}
	defer queueClient.Close()
	uploader := media.NewUploader(spooler, queueClient, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, storageSvc, uploader, cfg.GetMinioBucketProductMedia(), val, log)
	collateralModule := collateral.NewModule(pool, storageSvc, uploader, cfg.GetMinioBucketCollateral(), val, log)
	clientsModule := clients.NewModule(pool, val)
	assemblyModule := assembly.NewModule(catalogModule.Repository(), collateralModule.Repository(), storageSvc, cfg, eventBus, val, log)
	sharingModule := sharing.NewModule(pool, catalogModule.Repository(), storageSvc, cfg, cfg.GetMinioBucketProductMedia(), eventBus, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			collateralModule,
			clientsModule,
			assemblyModule,
			sharingModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
